package xmutex

import (
	"errors"

	"github.com/omeyang/xlock/pkg/sync/xwaitq"
)

var (
	// ErrCanceled 表示排队中的获取在授予前被取消。
	// 返回的错误同时包装 context.Cause(ctx)，可用 errors.Is 判断超时或取消原因。
	ErrCanceled = xwaitq.ErrCanceled

	// ErrNotHeld 表示 Handle 已失效：已 Unlock 过，或是零值 Handle。
	ErrNotHeld = errors.New("xmutex: lock not held")

	// ErrNilQueue 表示 WithQueue 传入了 nil 工厂。
	ErrNilQueue = errors.New("xmutex: nil queue factory")
)
