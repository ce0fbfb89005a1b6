package lockbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xlock/pkg/sync/xmutex"
	"github.com/omeyang/xlock/pkg/sync/xwaitq"
)

// priorityLevels 优先级模式下 worker 轮流使用的优先级个数。
const priorityLevels = 4

// DefaultSignals 返回提前结束运行的信号。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// Option 定义 Runner 可选配置。
type Option func(*Runner)

// WithLogger 设置日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSignals 设置提前结束运行的信号。不设置时不监听信号。
func WithSignals(sigs ...os.Signal) Option {
	return func(r *Runner) {
		r.signals = sigs
	}
}

// Runner 执行一次压测。
type Runner struct {
	cfg     Config
	logger  *slog.Logger
	signals []os.Signal

	mu     *xmutex.Mutex
	mp     *sdkmetric.MeterProvider
	reader *sdkmetric.ManualReader

	inCS       atomic.Int64
	maxHolders atomic.Int64
	violations atomic.Int64
}

// workerStats 由单个 worker 独占，结束后汇总。
type workerStats struct {
	acquired  int64
	canceled  int64
	discarded int64
	busy      int64
	waits     []time.Duration
}

// NewRunner 校验配置并创建 Runner。
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	mopts := []xmutex.Option{
		xmutex.WithName("lockbench"),
		xmutex.WithLogger(r.logger),
	}
	if cfg.Queue == QueuePriority {
		mopts = append(mopts, xmutex.WithPriorityQueue())
	}
	if cfg.Metrics {
		r.reader = sdkmetric.NewManualReader()
		r.mp = sdkmetric.NewMeterProvider(sdkmetric.WithReader(r.reader))
		mopts = append(mopts, xmutex.WithMeterProvider(r.mp))
	}
	m, err := xmutex.New(mopts...)
	if err != nil {
		return nil, err
	}
	r.mu = m
	return r, nil
}

// Run 运行到配置的时长结束、ctx 取消或收到信号，然后返回报告。
// 信号与 ctx 取消不视为错误，报告的 Interrupted 字段记录原因。
// 观察到互斥被破坏时仍返回完整报告，由 Report.Err 判定。
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.mp != nil {
		defer func() { _ = r.mp.Shutdown(context.WithoutCancel(ctx)) }()
	}

	runID := uuid.NewString()
	log := r.logger.With(slog.String("run_id", runID))
	log.Info("lockbench: run starting",
		slog.Int("workers", r.cfg.Workers),
		slog.Duration("duration", r.cfg.Duration),
		slog.String("mode", r.cfg.Mode),
		slog.String("queue", r.cfg.Queue),
	)

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	runCtx, stopTimer := context.WithTimeout(runCtx, r.cfg.Duration)
	defer stopTimer()

	if len(r.signals) > 0 {
		stopSignals := r.watchSignals(runCtx, cancel, log)
		defer stopSignals()
	}

	stats := make([]workerStats, r.cfg.Workers)
	g, gctx := errgroup.WithContext(runCtx)
	start := time.Now()
	for id := range r.cfg.Workers {
		g.Go(func() error {
			return r.worker(gctx, id, &stats[id])
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		log.Error("lockbench: worker failed", slog.Any("error", err))
		return nil, err
	}

	rep := newReport(runID, r.cfg, elapsed, stats)
	rep.Violations = r.violations.Load()
	rep.MaxHolders = r.maxHolders.Load()
	if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.DeadlineExceeded) {
		rep.Interrupted = cause.Error()
	}
	if r.reader != nil {
		points, err := collectMetrics(context.WithoutCancel(ctx), r.reader)
		if err != nil {
			return nil, fmt.Errorf("lockbench: collect metrics: %w", err)
		}
		rep.Metrics = points
	}

	log.Info("lockbench: run finished",
		slog.Int64("acquired", rep.Acquired),
		slog.Int64("canceled", rep.Canceled),
		slog.Int64("violations", rep.Violations),
		slog.Duration("elapsed", elapsed),
	)
	return rep, nil
}

// watchSignals 收到信号时以 SignalError 取消运行。
// 返回的函数先取消运行再停止监听，worker 出错提前返回时不会等到运行超时。
func (r *Runner) watchSignals(ctx context.Context, cancel context.CancelCauseFunc, log *slog.Logger) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, r.signals...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-sigCh:
			log.Info("lockbench: received signal", slog.String("signal", sig.String()))
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
		}
	}()
	return func() {
		cancel(nil)
		signal.Stop(sigCh)
		<-done
	}
}

func (r *Runner) modeFor(id int) string {
	if r.cfg.Mode != ModeMixed {
		return r.cfg.Mode
	}
	return [...]string{ModeBlocking, ModeAsync, ModeTry}[id%3]
}

func (r *Runner) worker(ctx context.Context, id int, st *workerStats) error {
	mode := r.modeFor(id)
	for ctx.Err() == nil {
		h, ok, err := r.acquire(ctx, id, mode, st)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := r.critical(h); err != nil {
			return fmt.Errorf("lockbench: worker %d: %w", id, err)
		}
	}
	return nil
}

// acquire 按 mode 获取一次锁。ok 为 false 表示本轮没有拿到锁（忙或被取消）。
func (r *Runner) acquire(ctx context.Context, id int, mode string, st *workerStats) (xmutex.Handle, bool, error) {
	if mode == ModeTry {
		h, ok := r.mu.TryAcquire()
		if !ok {
			st.busy++
			runtime.Gosched()
			return h, false, nil
		}
		st.acquired++
		st.waits = append(st.waits, 0)
		return h, true, nil
	}

	actx := ctx
	if mode == ModeAsync {
		// 异步请求不跟随运行结束而取消，运行结束时由 Discard 回收
		actx = context.WithoutCancel(ctx)
	}
	if r.cfg.Queue == QueuePriority {
		actx = xwaitq.WithPriority(actx, id%priorityLevels)
	}
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(actx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		h   xmutex.Handle
		err error
	)
	if mode == ModeAsync {
		p := r.mu.AcquireAsync(actx)
		select {
		case <-p.Done():
			h, err = p.Wait()
		case <-ctx.Done():
			// 运行结束：放弃请求，已被授予的锁由 Discard 释放
			p.Discard()
			st.discarded++
			return h, false, nil
		}
	} else {
		h, err = r.mu.Acquire(actx)
	}
	switch {
	case errors.Is(err, xmutex.ErrCanceled):
		// 运行结束导致的取消不计入
		if ctx.Err() == nil {
			st.canceled++
		}
		return h, false, nil
	case err != nil:
		return h, false, err
	}
	st.acquired++
	st.waits = append(st.waits, time.Since(start))
	return h, true, nil
}

// critical 在临界区内检查互斥性，然后释放锁。
func (r *Runner) critical(h xmutex.Handle) error {
	n := r.inCS.Add(1)
	if n > 1 {
		r.violations.Add(1)
	}
	for {
		cur := r.maxHolders.Load()
		if n <= cur || r.maxHolders.CompareAndSwap(cur, n) {
			break
		}
	}
	if r.cfg.Hold > 0 {
		time.Sleep(r.cfg.Hold)
	}
	r.inCS.Add(-1)
	return h.Unlock()
}
