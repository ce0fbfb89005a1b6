package xmutex

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "xmutex"

const spanNameAcquire = "xmutex.Acquire"

// Span 属性名称（Metrics 也复用这些常量，确保 trace 与 metrics 键名一致）
const (
	attrID      = "xmutex.id"
	attrName    = "xmutex.name"
	attrMode    = "xmutex.mode"
	attrResult  = "xmutex.result"
	attrGranted = "xmutex.granted"
	attrHandoff = "xmutex.handoff"
	attrReason  = "xmutex.reason"
)

func getTracer(tp trace.TracerProvider) trace.Tracer {
	return tp.Tracer(tracerName, trace.WithInstrumentationVersion(instrumentationVersion))
}

// startSpan 创建 span。tracer 为 nil 时返回 noop span，不影响 ctx 中已有的 span。
func startSpan(ctx context.Context, tracer trace.Tracer, name string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name)
}

func setSpanError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func setSpanOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

func acquireSpanAttributes(id uint64, name, mode string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int64(attrID, int64(id)), //nolint:gosec // 编号远小于 MaxInt64
		attribute.String(attrMode, mode),
	}
	if name != "" {
		attrs = append(attrs, attribute.String(attrName, name))
	}
	return attrs
}
