// Package util 提供建立在同步原语之上的工具子包。
//
// 子包列表：
//   - xkeylock: 基于 key 的进程内互斥锁表，每个 key 一把可取消的 FIFO 锁
//
// 设计原则：
//   - 锁语义统一由 pkg/sync/xmutex 提供，本层只做映射与生命周期管理
//   - 条目按引用计数回收，不做后台清理
package util
