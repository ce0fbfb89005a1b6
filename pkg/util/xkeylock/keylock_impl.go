package xkeylock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/xlock/pkg/sync/xmutex"
)

// keyLockImpl 是 Locker 的分片实现。
type keyLockImpl struct {
	shards   []shard
	mask     uint64
	opts     *options
	closed   atomic.Bool
	keyCount atomic.Int64

	// closeCtx 在 Close 时以 ErrClosed 取消，用于唤醒排队中的 Acquire。
	closeCtx    context.Context
	closeCancel context.CancelCauseFunc
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// lockEntry 表示一个 key 的锁条目。
type lockEntry struct {
	mu *xmutex.Mutex
	// refs 是引用此条目的持有者与等待者数量，由 shard.mu 保护。
	// 归零时条目从 map 中删除。
	refs int
}

// handle 实现 Handle 接口。
type handle struct {
	kl    *keyLockImpl
	key   string
	entry *lockEntry
	h     xmutex.Handle
	done  atomic.Bool
}

func newKeyLockImpl(opts *options) *keyLockImpl {
	shards := make([]shard, opts.shardCount)
	for i := range shards {
		shards[i].entries = make(map[string]*lockEntry)
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &keyLockImpl{
		shards:      shards,
		mask:        opts.shardMask,
		opts:        opts,
		closeCtx:    ctx,
		closeCancel: cancel,
	}
}

func (kl *keyLockImpl) getShard(key string) *shard {
	h := xxhash.Sum64String(key)
	return &kl.shards[h&kl.mask]
}

// getOrCreate 获取或创建 lockEntry，并增加引用计数。
func (kl *keyLockImpl) getOrCreate(key string) (*lockEntry, error) {
	s := kl.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if kl.closed.Load() {
		return nil, ErrClosed
	}

	e, ok := s.entries[key]
	if !ok {
		if err := kl.reserveKey(); err != nil {
			return nil, err
		}
		m, err := xmutex.New(append(slices.Clip(kl.opts.mutexOpts), xmutex.WithName(key))...)
		if err != nil {
			kl.keyCount.Add(-1)
			return nil, err
		}
		e = &lockEntry{mu: m}
		s.entries[key] = e
	}
	e.refs++
	return e, nil
}

// reserveKey 为新 key 占用一个名额。
func (kl *keyLockImpl) reserveKey() error {
	if kl.opts.maxKeys <= 0 {
		kl.keyCount.Add(1)
		return nil
	}
	// 使用 CAS 严格限制 key 数量，避免跨分片并发突破上限。
	for {
		cur := kl.keyCount.Load()
		if cur >= int64(kl.opts.maxKeys) {
			return ErrMaxKeysExceeded
		}
		if kl.keyCount.CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// releaseRef 减少引用计数，归零时从 map 删除。
func (kl *keyLockImpl) releaseRef(key string, entry *lockEntry) {
	s := kl.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(s.entries, key)
		kl.keyCount.Add(-1)
	}
}

func (kl *keyLockImpl) newHandle(key string, entry *lockEntry, h xmutex.Handle) *handle {
	return &handle{kl: kl, key: key, entry: entry, h: h}
}

func (kl *keyLockImpl) Acquire(ctx context.Context, key string) (Handle, error) {
	if ctx == nil {
		panic("xkeylock: nil Context")
	}
	if key == "" {
		return nil, ErrInvalidKey
	}
	entry, err := kl.getOrCreate(key)
	if err != nil {
		return nil, err
	}
	// 无竞争时不必挂接 Close。
	if h, ok := entry.mu.TryAcquire(); ok {
		return kl.newHandle(key, entry, h), nil
	}

	actx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(kl.closeCtx, func() { cancel(ErrClosed) })
	h, err := entry.mu.Acquire(actx)
	stop()
	cancel(nil)

	if err != nil {
		kl.releaseRef(key, entry)
		if errors.Is(err, ErrClosed) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return kl.newHandle(key, entry, h), nil
}

func (kl *keyLockImpl) TryAcquire(key string) (Handle, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	entry, err := kl.getOrCreate(key)
	if err != nil {
		return nil, err
	}
	h, ok := entry.mu.TryAcquire()
	if !ok {
		kl.releaseRef(key, entry)
		return nil, ErrLockOccupied
	}
	return kl.newHandle(key, entry, h), nil
}

func (kl *keyLockImpl) Len() int {
	return int(max(kl.keyCount.Load(), 0))
}

func (kl *keyLockImpl) Keys() []string {
	keys := make([]string, 0, kl.Len())
	for i := range kl.shards {
		s := &kl.shards[i]
		s.mu.Lock()
		for k := range s.entries {
			keys = append(keys, k)
		}
		s.mu.Unlock()
	}
	return keys
}

func (kl *keyLockImpl) Close() error {
	if !kl.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	kl.closeCancel(ErrClosed)
	kl.opts.logger.LogAttrs(context.Background(), slog.LevelInfo, "xkeylock: closed",
		slog.Int("keys", kl.Len()),
	)
	return nil
}

// handle 方法

func (h *handle) Unlock() error {
	if !h.done.CompareAndSwap(false, true) {
		return ErrLockNotHeld
	}
	err := h.h.Unlock()
	h.kl.releaseRef(h.key, h.entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLockNotHeld, err)
	}
	return nil
}

func (h *handle) Key() string {
	return h.key
}

// 编译期接口检查。
var (
	_ Locker = (*keyLockImpl)(nil)
	_ Handle = (*handle)(nil)
)
