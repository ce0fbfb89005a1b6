// Package xwaitq 提供互斥原语使用的等待队列。
//
// 等待队列由两部分组成：
//
//   - [Queue]：排队纪律（谁先被授予）。内置 [FIFO]（默认，严格入队顺序）
//     与 [Priority]（高优先级优先，同优先级按入队顺序）。
//   - [List]：在 Queue 之上实现完整的等待契约：入队并挂接 context 取消、
//     判断是否为空、取出最早的等待者并完成（Grant）、移除指定等待者（Cancel）。
//
// # 同步约定
//
// List 与 Queue 自身都不加锁。所有方法必须在创建 List 时传入的 guard 下调用；
// context 取消回调也会先获取 guard 再移除等待者。因此 Grant 与 Cancel
// 对同一等待者的竞争由 guard 串行化：先拿到 guard 的一方生效，另一方为空操作。
//
// # 取消
//
// 取消通过 [context.AfterFunc] 挂接，等待期间不占用额外 goroutine。
// 被取消的等待者以 [ErrCanceled] 完成，错误同时包装 context.Cause(ctx)：
//
//	h, err := w.Wait()
//	if errors.Is(err, xwaitq.ErrCanceled) { ... }
//	if errors.Is(err, context.DeadlineExceeded) { ... }
package xwaitq
