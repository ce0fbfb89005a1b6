// Package lockbench 是 xlockbench 命令的实现：
// 用可配置数量的 worker 压测一把 xmutex.Mutex，并校验互斥性。
//
// 配置来自 YAML/JSON 文件（koanf）与命令行覆盖，运行期间 worker 由 errgroup 管理，
// 收到 SIGINT/SIGTERM 时提前结束并照常输出报告。
package lockbench
