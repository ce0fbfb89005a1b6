package xmutex

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xlock/pkg/sync/xwaitq"
)

// lastID 进程内锁编号，仅用于诊断。
var lastID atomic.Uint64

// Mutex 是可取消、按排队纪律交接的互斥锁。
//
// 零值为未加锁、FIFO、无指标的 Mutex。Mutex 首次使用后不得复制。
type Mutex struct {
	// mu 串行化所有状态转换，只在常数时间的簿记期间持有，从不跨越等待。
	mu sync.Mutex

	owned bool
	// gen 在每次授予和释放时递增，只有 gen 相等的 Handle 才是当前持有者。
	gen uint64

	id      uint64
	waiters *xwaitq.List[Handle]
	opts    *options
}

// New 创建一个新的 Mutex。
// 配置无效时返回错误（如 WithQueue(nil)）。
func New(opts ...Option) (*Mutex, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	m := &Mutex{opts: o}
	m.mu.Lock()
	m.initLocked()
	m.mu.Unlock()
	return m, nil
}

// initLocked 延迟初始化，使零值可用。调用方必须持有 m.mu。
func (m *Mutex) initLocked() {
	if m.waiters != nil {
		return
	}
	if m.opts == nil {
		m.opts = zeroOptions
	}
	m.id = lastID.Add(1)
	m.waiters = xwaitq.NewList(m.opts.queue(), &m.mu)
	if metrics := m.opts.metrics; metrics != nil {
		name := m.opts.name
		m.waiters.OnCancel = func(cause error) {
			metrics.RecordCancel(context.Background(), name, cause)
		}
	}
}

// grantLocked 把锁标记为已持有并返回新的 Handle。调用方必须持有 m.mu。
func (m *Mutex) grantLocked() Handle {
	m.owned = true
	m.gen++
	return Handle{m: m, gen: m.gen}
}

// enter 在内部互斥量下决定立即授予、排队或失败：
//   - 锁空闲：立即授予（不论 ctx 状态），w 为 nil
//   - 锁被占用且 ctx 已取消：返回取消错误，不入队
//   - 否则：入队并返回等待者
func (m *Mutex) enter(ctx context.Context) (Handle, *xwaitq.Waiter[Handle], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked()

	if !m.owned {
		return m.grantLocked(), nil, nil
	}
	if ctx.Err() != nil {
		return Handle{}, nil, xwaitq.CanceledError(context.Cause(ctx))
	}
	return Handle{}, m.waiters.Enqueue(ctx), nil
}

func checkContext(ctx context.Context) {
	if ctx == nil {
		panic("xmutex: nil Context")
	}
}

// Acquire 阻塞式获取锁。
//
// 锁空闲时立即返回（即使 ctx 已取消）。锁被占用时排队等待，直到被授予或 ctx 取消；
// 取消时返回的错误满足 errors.Is(err, [ErrCanceled]) 与 errors.Is(err, context.Cause(ctx))。
// ctx 不得为 nil，否则 panic。
func (m *Mutex) Acquire(ctx context.Context) (Handle, error) {
	checkContext(ctx)
	h, w, err := m.enter(ctx)
	switch {
	case err != nil:
		m.opts.metrics.RecordAcquire(ctx, m.opts.name, modeBlocking, resultCanceled)
		return Handle{}, err
	case w == nil:
		m.opts.metrics.RecordAcquire(ctx, m.opts.name, modeBlocking, resultImmediate)
		return h, nil
	}
	m.opts.metrics.RecordAcquire(ctx, m.opts.name, modeBlocking, resultQueued)
	return m.await(ctx, w)
}

// await 在内部互斥量之外等待授予结果。
func (m *Mutex) await(ctx context.Context, w *xwaitq.Waiter[Handle]) (Handle, error) {
	o := m.opts

	var start time.Time
	if o.metrics != nil {
		start = time.Now()
	}
	ctx, span := startSpan(ctx, o.tracer, spanNameAcquire)
	defer span.End()
	span.SetAttributes(acquireSpanAttributes(m.id, o.name, modeBlocking)...)

	h, err := w.Wait()
	if o.metrics != nil {
		o.metrics.RecordWait(ctx, o.name, modeBlocking, err == nil, time.Since(start))
	}
	if err != nil {
		setSpanError(span, err)
		o.logger.LogAttrs(ctx, slog.LevelDebug, "xmutex: acquire canceled",
			slog.Uint64("mutex_id", m.id),
			slog.String("mutex", o.name),
			slog.Any("error", err),
		)
		return Handle{}, err
	}
	setSpanOK(span)
	return h, nil
}

// AcquireAsync 异步获取锁，立即返回 [Pending]。
//
// 锁空闲时返回已完成的 Pending（不挂起，不分配）。锁被占用且 ctx 已取消时
// 返回已失败的 Pending。否则入队，Pending 在被授予或 ctx 取消时完成。
//
// 调用方必须消费 Pending：Wait 成功后 Unlock，或调用 Discard。
// ctx 不得为 nil，否则 panic。
func (m *Mutex) AcquireAsync(ctx context.Context) Pending {
	checkContext(ctx)
	h, w, err := m.enter(ctx)
	switch {
	case err != nil:
		m.opts.metrics.RecordAcquire(ctx, m.opts.name, modeAsync, resultCanceled)
		return Pending{err: err}
	case w == nil:
		m.opts.metrics.RecordAcquire(ctx, m.opts.name, modeAsync, resultImmediate)
		return Pending{h: h}
	}
	m.opts.metrics.RecordAcquire(ctx, m.opts.name, modeAsync, resultQueued)
	return Pending{m: m, w: w}
}

// TryAcquire 非阻塞获取锁。锁被占用时返回 (Handle{}, false)，不入队。
func (m *Mutex) TryAcquire() (Handle, bool) {
	m.mu.Lock()
	m.initLocked()
	if m.owned {
		m.mu.Unlock()
		m.opts.metrics.RecordAcquire(context.Background(), m.opts.name, modeTry, resultBusy)
		return Handle{}, false
	}
	h := m.grantLocked()
	m.mu.Unlock()
	m.opts.metrics.RecordAcquire(context.Background(), m.opts.name, modeTry, resultImmediate)
	return h, true
}

// Do 获取锁后执行 fn，并保证在 fn 返回或 panic 时释放锁。
// 获取失败时不调用 fn，直接返回获取错误。
func (m *Mutex) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	h, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := h.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return fn(ctx)
}

// release 释放 h 持有的锁。有等待者时直接交接给下一个等待者。
// warn 为 false 时不为失效 Handle 记录告警日志。
func (m *Mutex) release(h Handle, warn bool) error {
	m.mu.Lock()
	if !m.owned || h.gen != m.gen {
		m.mu.Unlock()
		if warn {
			m.opts.logger.LogAttrs(context.Background(), slog.LevelWarn, "xmutex: unlock of unheld handle",
				slog.Uint64("mutex_id", m.id),
				slog.String("mutex", m.opts.name),
			)
		}
		return ErrNotHeld
	}
	m.gen++
	handoff := m.waiters.Grant(Handle{m: m, gen: m.gen})
	if !handoff {
		m.owned = false
	}
	m.mu.Unlock()

	m.opts.metrics.RecordRelease(context.Background(), m.opts.name, handoff)
	return nil
}

// Locked 报告锁当前是否被持有（瞬时快照）。
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owned
}

// Waiters 返回排队中的等待者数量（瞬时快照）。
func (m *Mutex) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked()
	return m.waiters.Len()
}

// ID 返回进程内唯一的锁编号，在锁的生命周期内不变。
func (m *Mutex) ID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked()
	return m.id
}

// Name 返回 WithName 设置的名称。
func (m *Mutex) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked()
	return m.opts.name
}

// String 返回调试用的状态描述，如 "xmutex#3(orders) owned waiters=2"。
func (m *Mutex) String() string {
	m.mu.Lock()
	m.initLocked()
	id, name, owned, n := m.id, m.opts.name, m.owned, m.waiters.Len()
	m.mu.Unlock()

	state := "free"
	if owned {
		state = "owned"
	}
	if name == "" {
		return fmt.Sprintf("xmutex#%d %s waiters=%d", id, state, n)
	}
	return fmt.Sprintf("xmutex#%d(%s) %s waiters=%d", id, name, state, n)
}
