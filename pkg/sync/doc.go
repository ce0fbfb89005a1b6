// Package sync 提供可取消的同步原语相关的子包。
//
// 子包列表：
//   - xwaitq: 等待队列，可插拔的排队纪律（FIFO、优先级）与 context 取消
//   - xmutex: 可取消互斥锁，支持阻塞、异步与非阻塞获取，释放时按排队纪律交接
//
// 设计原则：
//   - 内部互斥量只保护常数时间的簿记，从不跨越等待
//   - 授予与取消在同一把内部互斥量下裁决，先到者生效
//   - 所有权以值类型的 Handle 表示，失效的 Handle 无法释放他人的锁
package sync
