// =============================================================================
// 🌐 传输打桩
// =============================================================================
// 提供可注入 http.Client 的 RoundTripper 实现，用于在不起真实
// 服务器的情况下驱动或阻断网络路径
// =============================================================================
package testutil

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// RoundTripFunc 将函数适配为 http.RoundTripper
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip 实现 http.RoundTripper
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// JSONResponse 构造给定状态码的 JSON 响应，供打桩函数返回
func JSONResponse(status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// BinaryResponse 构造给定内容类型的二进制响应
func BinaryResponse(status int, contentType string, body []byte) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", contentType)
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(string(body))),
	}
}

// CountingTransport 统计经过的请求数，用于"零网络调用"类断言
type CountingTransport struct {
	mu    sync.Mutex
	calls int
	inner http.RoundTripper
}

// NewCountingTransport 包装 inner；inner 为 nil 时所有请求直接失败，
// 等价于断言根本不应发起网络调用
func NewCountingTransport(inner http.RoundTripper) *CountingTransport {
	return &CountingTransport{inner: inner}
}

// RoundTrip 实现 http.RoundTripper
func (c *CountingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.inner == nil {
		return nil, http.ErrNotSupported
	}
	return c.inner.RoundTrip(r)
}

// Calls 返回已经过的请求数
func (c *CountingTransport) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type gateResult struct {
	resp *http.Response
	err  error
}

// GatedTransport 将在途请求阻塞在门闸上，由测试代码手动放行。
// 请求进入时向 Started 发送信号；放行前若请求上下文被取消，
// RoundTrip 返回上下文错误
type GatedTransport struct {
	Started chan struct{}
	release chan gateResult
}

// NewGatedTransport 构造门闸传输
func NewGatedTransport() *GatedTransport {
	return &GatedTransport{
		Started: make(chan struct{}, 16),
		release: make(chan gateResult, 16),
	}
}

// RoundTrip 实现 http.RoundTripper
func (g *GatedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	g.Started <- struct{}{}
	select {
	case res := <-g.release:
		return res.resp, res.err
	case <-r.Context().Done():
		return nil, r.Context().Err()
	}
}

// Release 放行一个在途请求，返回给定状态码与 JSON 响应体
func (g *GatedTransport) Release(status int, body string) {
	g.release <- gateResult{resp: JSONResponse(status, body)}
}

// ReleaseError 以传输层错误放行一个在途请求
func (g *GatedTransport) ReleaseError(err error) {
	g.release <- gateResult{err: err}
}
