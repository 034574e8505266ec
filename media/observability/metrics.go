// Package observability 提供媒体转换管线的 OpenTelemetry 指标与追踪。
// 未安装 SDK 时全局 provider 为 noop，记录调用零开销；
// *Metrics 为 nil 时所有方法直接返回，适配器无需判空。
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/BaSui01/mediaflow/media"
)

const instrumentationName = "github.com/BaSui01/mediaflow/media"

// Metrics 媒体请求指标收集器
type Metrics struct {
	tracer trace.Tracer
	meter  metric.Meter
	// 计数器
	requestTotal       metric.Int64Counter
	errorTotal         metric.Int64Counter
	cacheHitTotal      metric.Int64Counter
	cacheMissTotal     metric.Int64Counter
	cacheEvictionTotal metric.Int64Counter
	// 直方图
	requestDuration metric.Float64Histogram
	payloadBytes    metric.Int64Histogram
	// 活跃请求
	activeRequests metric.Int64UpDownCounter
}

// NewMetrics 创建指标收集器
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	var err error

	// 请求计数
	m.requestTotal, err = m.meter.Int64Counter("media.request.total",
		metric.WithDescription("Total number of media conversion requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	// 错误计数
	m.errorTotal, err = m.meter.Int64Counter("media.error.total",
		metric.WithDescription("Total number of failed requests by error code"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	// 缓存命中
	m.cacheHitTotal, err = m.meter.Int64Counter("media.cache.hit.total",
		metric.WithDescription("Total cache hits"),
		metric.WithUnit("{hit}"))
	if err != nil {
		return nil, err
	}

	// 缓存未命中
	m.cacheMissTotal, err = m.meter.Int64Counter("media.cache.miss.total",
		metric.WithDescription("Total cache misses"),
		metric.WithUnit("{miss}"))
	if err != nil {
		return nil, err
	}

	// 缓存逐出
	m.cacheEvictionTotal, err = m.meter.Int64Counter("media.cache.eviction.total",
		metric.WithDescription("Total FIFO cache evictions"),
		metric.WithUnit("{eviction}"))
	if err != nil {
		return nil, err
	}

	// 请求延迟
	m.requestDuration, err = m.meter.Float64Histogram("media.request.duration",
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30))
	if err != nil {
		return nil, err
	}

	// 载荷大小分布
	m.payloadBytes, err = m.meter.Int64Histogram("media.payload.bytes",
		metric.WithDescription("Decoded payload size per request"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1024, 16384, 65536, 262144, 1048576, 4194304))
	if err != nil {
		return nil, err
	}

	// 活跃请求数
	m.activeRequests, err = m.meter.Int64UpDownCounter("media.request.active",
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// StartRequest 开始请求追踪，返回带 span 的 context 与结束回调。
// 结束回调以最终错误（可为 nil）记录全部请求指标。
func (m *Metrics) StartRequest(ctx context.Context, provider, capability string) (context.Context, func(error)) {
	if m == nil {
		return ctx, func(error) {}
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("capability", capability),
	}

	ctx, span := m.tracer.Start(ctx, "media."+capability,
		trace.WithAttributes(attrs...))
	m.activeRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(err error) {
		defer span.End()

		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			m.errorTotal.Add(ctx, 1, metric.WithAttributes(append(attrs,
				attribute.String("code", string(media.GetCode(err))))...))
		}

		done := append(attrs, attribute.String("status", status))
		m.activeRequests.Add(ctx, -1, metric.WithAttributes(attrs...))
		m.requestTotal.Add(ctx, 1, metric.WithAttributes(done...))
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(done...))
	}
}

// RecordCacheHit 记录一次缓存命中。
func (m *Metrics) RecordCacheHit(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.cacheHitTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordCacheMiss 记录一次缓存未命中。
func (m *Metrics) RecordCacheMiss(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.cacheMissTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordCacheEviction 记录一次 FIFO 逐出。
func (m *Metrics) RecordCacheEviction(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.cacheEvictionTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordPayload 记录载荷大小。
func (m *Metrics) RecordPayload(ctx context.Context, provider string, size int) {
	if m == nil {
		return
	}
	m.payloadBytes.Record(ctx, int64(size), metric.WithAttributes(attribute.String("provider", provider)))
}
