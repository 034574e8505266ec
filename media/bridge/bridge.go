package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/mediaflow/internal/tlsutil"
	"github.com/BaSui01/mediaflow/media"
)

// 调度参数默认值。
const (
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

// Config 控制桥接器的调度参数。
type Config struct {
	// Timeout 整体墙钟超时，从派发时刻起算。零值取 DefaultTimeout。
	Timeout time.Duration

	// PollInterval 轮询节拍间隔。零值取 DefaultPollInterval。
	PollInterval time.Duration

	// RequestsPerSecond 客户端侧限速；零表示不限速。
	RequestsPerSecond float64

	// Burst 限速桶容量，仅在限速开启时生效。零值取 1。
	Burst int

	// Provider 用于错误与日志标注的提供商名。
	Provider string

	// Transport 自定义底层传输；nil 使用 tlsutil 的安全默认值。
	Transport http.RoundTripper
}

// Response 传输层原始响应三元组。状态码的语义映射留给各适配器。
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type transportResult struct {
	resp *Response
	err  error
}

// Bridge 单槽异步请求桥。零值不可用，必须经 New 构造。
type Bridge struct {
	client   *http.Client
	clock    Clock
	logger   *zap.Logger
	limiter  *rate.Limiter
	timeout  time.Duration
	interval time.Duration
	provider string
	current  atomic.Pointer[Operation]
}

// New 构造桥接器。构造本身不发起任何网络 I/O。
func New(cfg Config, clock Clock, logger *zap.Logger) *Bridge {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// HTTP 客户端不设自身超时，截止时间全部由轮询循环的上下文控制。
	client := tlsutil.SecureHTTPClient(0)
	if cfg.Transport != nil {
		client = &http.Client{Transport: cfg.Transport}
	}
	b := &Bridge{
		client:   client,
		clock:    clock,
		logger:   logger.Named("bridge"),
		timeout:  cfg.Timeout,
		interval: cfg.PollInterval,
		provider: cfg.Provider,
	}
	if b.timeout <= 0 {
		b.timeout = DefaultTimeout
	}
	if b.interval <= 0 {
		b.interval = DefaultPollInterval
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return b
}

// Do 派发请求并轮询等待结果。同一桥接器同时至多一个在途操作，
// 占槽期间再次调用立即返回 BUSY。成功时返回未经映射的原始响应，
// 无论其 HTTP 状态码为何。
func (b *Bridge) Do(ctx context.Context, req *http.Request) (*Response, error) {
	op := newOperation(b.clock.Now())
	if !b.current.CompareAndSwap(nil, op) {
		return nil, media.NewError(media.ErrBusy, "an operation is already in flight").
			WithProvider(b.provider)
	}
	defer b.current.CompareAndSwap(op, nil)

	if err := b.reserve(ctx, op); err != nil {
		return nil, err
	}

	tctx, abort := context.WithCancel(ctx)
	defer abort()

	result := make(chan transportResult, 1)
	go b.roundTrip(req.WithContext(tctx), result)

	b.logger.Debug("operation dispatched",
		zap.String("operation_id", op.ID()),
		zap.String("provider", b.provider),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()))

	ticker := b.clock.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		now := <-ticker.C()

		// 节拍内按序检查：完成、取消、超时。
		select {
		case res := <-result:
			return b.finish(op, res)
		default:
		}

		if op.Cancelled() {
			abort()
			b.logger.Debug("operation cancelled",
				zap.String("operation_id", op.ID()),
				zap.Duration("elapsed", now.Sub(op.StartedAt())))
			return nil, media.NewError(media.ErrCancelled, "operation cancelled").
				WithProvider(b.provider)
		}

		if err := ctx.Err(); err != nil {
			abort()
			if errors.Is(err, context.DeadlineExceeded) {
				elapsed := now.Sub(op.StartedAt())
				return nil, media.NewError(media.ErrTimeout,
					fmt.Sprintf("context deadline exceeded after %s", elapsed.Round(time.Millisecond))).
					WithProvider(b.provider).
					WithCause(err)
			}
			return nil, media.NewError(media.ErrCancelled, "operation cancelled").
				WithProvider(b.provider).
				WithCause(err)
		}

		if elapsed := now.Sub(op.StartedAt()); elapsed > b.timeout {
			abort()
			b.logger.Warn("operation timed out",
				zap.String("operation_id", op.ID()),
				zap.String("provider", b.provider),
				zap.Duration("elapsed", elapsed))
			return nil, media.NewError(media.ErrTimeout,
				fmt.Sprintf("operation timed out after %s", elapsed.Round(time.Millisecond))).
				WithProvider(b.provider).
				WithRetryable(true)
		}
	}
}

// Cancel 抬起当前在途操作的取消标志；空闲时无操作。取消是协作式
// 的，传输在下一个节拍被中止，而非立即中断。
func (b *Bridge) Cancel() {
	if op := b.current.Load(); op != nil {
		op.Cancel()
		b.logger.Debug("cancel requested", zap.String("operation_id", op.ID()))
	}
}

// InFlight 报告当前是否有在途操作。
func (b *Bridge) InFlight() bool { return b.current.Load() != nil }

// reserve 在限速器上等待配额，等待时间计入整体超时预算。
func (b *Bridge) reserve(ctx context.Context, op *Operation) error {
	if b.limiter == nil {
		return nil
	}
	wctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.limiter.Wait(wctx); err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return media.NewError(media.ErrCancelled, "operation cancelled").
				WithProvider(b.provider).
				WithCause(err)
		}
		elapsed := b.clock.Now().Sub(op.StartedAt())
		return media.NewError(media.ErrTimeout,
			fmt.Sprintf("rate limit wait exhausted %s budget after %s", b.timeout, elapsed.Round(time.Millisecond))).
			WithProvider(b.provider).
			WithCause(err)
	}
	return nil
}

// roundTrip 在唯一的工作协程中执行传输，结果写入缓冲通道后退出。
// 通道带一格缓冲，即使轮询侧已经返回也不会阻塞泄漏。
func (b *Bridge) roundTrip(req *http.Request, out chan<- transportResult) {
	resp, err := b.client.Do(req)
	if err != nil {
		out <- transportResult{err: err}
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		out <- transportResult{err: fmt.Errorf("read response body: %w", err)}
		return
	}
	out <- transportResult{resp: &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}}
}

// finish 将传输结果翻译为桥接器的返回值。
func (b *Bridge) finish(op *Operation, res transportResult) (*Response, error) {
	if res.err != nil {
		if op.Cancelled() || errors.Is(res.err, context.Canceled) {
			return nil, media.NewError(media.ErrCancelled, "operation cancelled").
				WithProvider(b.provider).
				WithCause(res.err)
		}
		b.logger.Warn("transport failure",
			zap.String("operation_id", op.ID()),
			zap.String("provider", b.provider),
			zap.Error(res.err))
		return nil, media.NewError(media.ErrUnavailable, "transport round trip failed").
			WithProvider(b.provider).
			WithRetryable(true).
			WithCause(res.err)
	}
	b.logger.Debug("operation completed",
		zap.String("operation_id", op.ID()),
		zap.Int("status", res.resp.Status),
		zap.Int("body_bytes", len(res.resp.Body)))
	return res.resp, nil
}
