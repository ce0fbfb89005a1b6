package xmutex

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationVersion = "1.0.0"

const (
	// metricNameAcquireTotal 获取次数计数器
	metricNameAcquireTotal = "xmutex.acquire.total"
	// metricNameAcquireWait 排队等待耗时直方图
	metricNameAcquireWait = "xmutex.acquire.wait"
	// metricNameReleaseTotal 释放次数计数器
	metricNameReleaseTotal = "xmutex.release.total"
	// metricNameCancelTotal 排队取消次数计数器
	metricNameCancelTotal = "xmutex.cancel.total"
)

// 获取方式
const (
	modeBlocking = "blocking"
	modeAsync    = "async"
	modeTry      = "try"
)

// 获取结果
const (
	resultImmediate = "immediate" // 锁空闲，立即授予
	resultQueued    = "queued"    // 锁被占用，已入队
	resultBusy      = "busy"      // TryAcquire 失败
	resultCanceled  = "canceled"  // 锁被占用且 ctx 已取消
)

// durationBuckets 等待耗时直方图的桶边界（秒）
var durationBuckets = []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// Metrics 互斥锁指标收集器。nil *Metrics 的所有方法都是空操作。
type Metrics struct {
	meter        metric.Meter
	acquireTotal metric.Int64Counter
	acquireWait  metric.Float64Histogram
	releaseTotal metric.Int64Counter
	cancelTotal  metric.Int64Counter
}

// NewMetrics 创建指标收集器。
// meterProvider 为 nil 时返回 nil（不收集指标）。
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	if meterProvider == nil {
		return nil, nil
	}

	m := &Metrics{
		meter: meterProvider.Meter("xmutex",
			metric.WithInstrumentationVersion(instrumentationVersion),
		),
	}

	var err error
	if m.acquireTotal, err = m.meter.Int64Counter(metricNameAcquireTotal,
		metric.WithDescription("互斥锁获取次数"), metric.WithUnit("{acquire}")); err != nil {
		return nil, err
	}
	if m.acquireWait, err = m.meter.Float64Histogram(metricNameAcquireWait,
		metric.WithDescription("互斥锁排队等待耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	if m.releaseTotal, err = m.meter.Int64Counter(metricNameReleaseTotal,
		metric.WithDescription("互斥锁释放次数"), metric.WithUnit("{release}")); err != nil {
		return nil, err
	}
	if m.cancelTotal, err = m.meter.Int64Counter(metricNameCancelTotal,
		metric.WithDescription("排队等待被取消次数"), metric.WithUnit("{cancel}")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAcquire 记录一次获取调用的即时结果。
func (m *Metrics) RecordAcquire(ctx context.Context, name, mode, result string) {
	if m == nil {
		return
	}
	m.acquireTotal.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(
		attribute.String(attrName, name),
		attribute.String(attrMode, mode),
		attribute.String(attrResult, result),
	))
}

// RecordWait 记录排队等待的耗时与结果。
func (m *Metrics) RecordWait(ctx context.Context, name, mode string, granted bool, d time.Duration) {
	if m == nil {
		return
	}
	m.acquireWait.Record(context.WithoutCancel(ctx), d.Seconds(), metric.WithAttributes(
		attribute.String(attrName, name),
		attribute.String(attrMode, mode),
		attribute.Bool(attrGranted, granted),
	))
}

// RecordRelease 记录一次释放，handoff 表示所有权是否直接交给了等待者。
func (m *Metrics) RecordRelease(ctx context.Context, name string, handoff bool) {
	if m == nil {
		return
	}
	m.releaseTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrName, name),
		attribute.Bool(attrHandoff, handoff),
	))
}

// RecordCancel 记录一次排队取消。
// 设计决策: 在内部互斥量下调用，只做一次计数器累加。
func (m *Metrics) RecordCancel(ctx context.Context, name string, cause error) {
	if m == nil {
		return
	}
	m.cancelTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrName, name),
		attribute.String(attrReason, cancelReason(cause)),
	))
}

func cancelReason(cause error) string {
	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		return "deadline"
	case errors.Is(cause, ErrDiscarded):
		return "discarded"
	case cause == nil, errors.Is(cause, context.Canceled):
		return "canceled"
	default:
		return "cause"
	}
}
