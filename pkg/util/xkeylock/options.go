package xkeylock

import (
	"fmt"
	"log/slog"

	"github.com/omeyang/xlock/pkg/sync/xmutex"
)

const (
	defaultShardCount = 32
	maxShardCount     = 1 << 16 // 65536
)

// Option 定义 Locker 可选配置。
type Option func(*options)

type options struct {
	maxKeys    int
	shardCount int
	queue      xmutex.QueueFactory
	queueSet   bool
	logger     *slog.Logger

	// validate() 计算
	shardMask uint64
	mutexOpts []xmutex.Option
}

func defaultOptions() options {
	return options{
		shardCount: defaultShardCount,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// WithMaxKeys 设置最大 key 数量。
// 达到上限时，新 key 的 Acquire/TryAcquire 返回 [ErrMaxKeysExceeded]。
// n <= 0 表示不限制（默认）。
func WithMaxKeys(n int) Option {
	if n < 0 {
		n = 0
	}
	return func(o *options) {
		o.maxKeys = n
	}
}

// WithShardCount 设置分片数量。
// n 必须为正整数且为 2 的幂，上限 65536，否则 New 返回 [ErrInvalidShardCount]。默认 32。
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithQueue 设置每个 key 的排队纪律，默认 FIFO。
// 传入 nil 时 New 返回 [xmutex.ErrNilQueue]。
func WithQueue(factory xmutex.QueueFactory) Option {
	return func(o *options) {
		o.queue = factory
		o.queueSet = true
	}
}

// WithLogger 设置日志记录器。nil 表示不记录。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func (o *options) validate() error {
	sc := o.shardCount
	if sc <= 0 || sc > maxShardCount || sc&(sc-1) != 0 {
		return fmt.Errorf("%w: must be a positive power of 2 (max %d), got %d",
			ErrInvalidShardCount, maxShardCount, sc)
	}
	o.shardMask = uint64(sc - 1) //nolint:gosec // sc ∈ [1, maxShardCount]

	o.mutexOpts = []xmutex.Option{xmutex.WithLogger(o.logger)}
	if o.queueSet {
		o.mutexOpts = append(o.mutexOpts, xmutex.WithQueue(o.queue))
	}
	// 用一把探测锁校验 xmutex 配置，之后为每个 key 建锁不会再失败。
	if _, err := xmutex.New(o.mutexOpts...); err != nil {
		return err
	}
	return nil
}
