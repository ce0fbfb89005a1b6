package xkeylock

import (
	"context"
	"io"
)

// Handle 表示一次成功的锁获取。
// Unlock 是幂等的：第一次调用释放锁并返回 nil，后续调用返回 [ErrLockNotHeld]。
type Handle interface {
	// Unlock 释放锁，有等待者时直接交接给排在最前的等待者。
	Unlock() error

	// Key 返回锁的 key。Unlock 之后仍返回原始 key。
	Key() string
}

// Locker 提供基于 key 的进程内互斥锁。
// 所有方法都是并发安全的。
type Locker interface {
	io.Closer

	// Acquire 阻塞式获取 key 的锁，同一 key 的等待者按排队纪律获得锁。
	//
	// 锁空闲时立即授予，不论 ctx 状态。排队期间 ctx 取消时返回的错误满足
	// errors.Is(err, xmutex.ErrCanceled) 与 errors.Is(err, context.Cause(ctx))。
	// Locker 已关闭或排队期间被 Close 时返回 [ErrClosed]。
	// key 为空返回 [ErrInvalidKey]；ctx 为 nil 时 panic。
	//
	// 设计决策: 锁是非可重入的，与 sync.Mutex 一致。
	// 同一 goroutine 对同一 key 重复 Acquire 会一直等待到 ctx 取消。
	Acquire(ctx context.Context, key string) (Handle, error)

	// TryAcquire 非阻塞获取锁。
	// 锁被占用时返回 (nil, [ErrLockOccupied])，不排队。
	// Locker 已关闭时返回 (nil, [ErrClosed])。
	TryAcquire(key string) (Handle, error)

	// Len 返回当前活跃的 key 数量（单次原子读取，瞬时快照）。
	Len() int

	// Keys 返回当前活跃条目的 key 列表（包含持有者和等待者），仅用于调试。
	// 返回值是快照，不保证跨分片原子性。
	Keys() []string
}

// New 创建一个新的 Locker 实例。
// 配置无效时返回错误（如分片数不是 2 的幂）。
func New(opts ...Option) (Locker, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return newKeyLockImpl(&o), nil
}
