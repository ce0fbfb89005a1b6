// Package xkeylock 提供按 key 互斥的进程内锁表。
//
// 每个 key 对应一把 [xmutex.Mutex]，因此同一 key 的等待者按排队纪律（默认 FIFO）
// 依次获得锁，并支持 ctx 取消。锁表本身只负责 key → 锁的映射与回收。
//
// # 特性
//
//   - 排队公平：同一 key 的 Acquire 按到达顺序获得锁，释放时直接交接
//   - Context 支持：Acquire 支持超时和取消（ctx 不得为 nil，否则 panic）
//   - TryAcquire：非阻塞获取，锁被占用时返回 [ErrLockOccupied]
//   - Handle 语义：Unlock 幂等（首次返回 nil，后续返回 [ErrLockNotHeld]）
//   - 分片 map：默认 32 分片（xxhash 选片），减少管理锁争用
//   - 引用计数：持有者与等待者都释放后条目立即删除
//   - 内存安全：WithMaxKeys(n) 可限制最大 key 数
//   - 关闭语义：Close() 拒绝新请求并以 [ErrClosed] 唤醒所有等待者，已持有的锁不受影响
package xkeylock
