package xmutex

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xlock/pkg/sync/xwaitq"
)

//go:generate mockgen -destination=queue_mock_test.go -package=xmutex github.com/omeyang/xlock/pkg/sync/xwaitq Queue

// QueueFactory 为每把锁创建一个排队纪律实例。
type QueueFactory func() xwaitq.Queue[Handle]

// Option 定义 Mutex 可选配置。
type Option func(*options)

type options struct {
	name           string
	queue          QueueFactory
	logger         *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider

	// validate() 计算
	metrics *Metrics
	tracer  trace.Tracer
}

func fifoQueue() xwaitq.Queue[Handle] {
	return xwaitq.NewFIFO[Handle]()
}

func priorityQueue() xwaitq.Queue[Handle] {
	return xwaitq.NewPriority[Handle]()
}

var discardLogger = slog.New(slog.DiscardHandler)

// zeroOptions 供零值 Mutex 使用，只读。
var zeroOptions = defaultOptions()

func defaultOptions() *options {
	return &options{
		queue:  fifoQueue,
		logger: discardLogger,
	}
}

// WithName 设置锁名称，用于日志、指标与 String()。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithQueue 设置排队纪律。默认 FIFO。
func WithQueue(factory QueueFactory) Option {
	return func(o *options) {
		o.queue = factory
	}
}

// WithPriorityQueue 使用优先级排队：等待者的优先级由 xwaitq.WithPriority 写入 ctx。
func WithPriorityQueue() Option {
	return WithQueue(priorityQueue)
}

// WithLogger 设置日志记录器。nil 表示不记录。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider。
// 不设置时不收集指标，热路径上不产生任何开销。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider 设置 OpenTelemetry TracerProvider。
// 设置后，需要排队的 Acquire 会创建 span 覆盖等待过程。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

func (o *options) validate() error {
	if o.queue == nil {
		return ErrNilQueue
	}
	metrics, err := NewMetrics(o.meterProvider)
	if err != nil {
		return err
	}
	o.metrics = metrics
	if o.tracerProvider != nil {
		o.tracer = getTracer(o.tracerProvider)
	}
	return nil
}
