// Package xmutex 提供可取消、FIFO 交接的进程内互斥锁。
//
// 同一把锁支持三种获取方式，共享一份内部状态：
//
//	方式            方法              等待时              ctx 已取消且锁被占用
//	──────────────────────────────────────────────────────────────────
//	阻塞            Acquire(ctx)      阻塞当前 goroutine   立即返回 ErrCanceled
//	异步            AcquireAsync(ctx) 返回 Pending         返回已失败的 Pending
//	非阻塞探测      TryAcquire()      不等待，直接失败     不适用
//
// 锁空闲时，即使 ctx 已取消也会立即授予：取消只影响必须排队的调用方。
//
// # 所有权
//
// 成功获取返回 [Handle]。Handle 是指回锁的轻量值（无额外分配），
// 必须且只能 Unlock 一次，推荐 defer：
//
//	h, err := mu.Acquire(ctx)
//	if err != nil {
//		return err
//	}
//	defer h.Unlock()
//
// 或使用 [Mutex.Do] 把临界区限定在回调内。重复 Unlock 返回 [ErrNotHeld]，
// 不会释放其他持有者的锁。
//
// # 交接
//
// Unlock 时若有等待者，所有权直接交给队首等待者，锁不会经过空闲状态，
// 因此新到达的调用方无法插队。等待顺序由 [WithQueue] 指定的排队纪律决定，
// 默认 FIFO。
//
// # 取消与授予的竞争
//
// 取消回调与 Unlock 的交接都在内部互斥量下执行，先拿到互斥量的一方生效：
// 若授予在先，取消为空操作，调用方拿到 Handle（err 为 nil），必须 Unlock；
// 若取消在先，该等待者被跳过，交接给下一个等待者。
//
// # 设计决策
//
// 锁是非可重入的，与 sync.Mutex 一致。零值 Mutex 可直接使用（FIFO、无指标）。
package xmutex
