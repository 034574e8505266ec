package bridge_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/testutil"
)

type outcome struct {
	resp *bridge.Response
	err  error
}

func dispatch(t *testing.T, ctx context.Context, b *bridge.Bridge) <-chan outcome {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "https://media.invalid/api/generate", nil)
	require.NoError(t, err)

	done := make(chan outcome, 1)
	go func() {
		resp, err := b.Do(ctx, req)
		done <- outcome{resp: resp, err: err}
	}()
	return done
}

// advanceUntilResolved 反复推进一个节拍，直到 Do 返回。传输结果落入
// 内部通道与节拍消费之间存在调度间隙，所以这里允许多推几拍。
func advanceUntilResolved(t *testing.T, clock *testutil.FakeClock, done <-chan outcome) outcome {
	t.Helper()
	var out outcome
	testutil.AssertEventuallyTrue(t, func() bool {
		clock.Advance(bridge.DefaultPollInterval)
		select {
		case out = <-done:
			return true
		default:
			return false
		}
	}, 5*time.Second)
	return out
}

func TestDo_ReturnsRawResponseUnmapped(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{Provider: "stub", Transport: gate}, clock, nil)

	done := dispatch(t, context.Background(), b)
	clock.BlockUntil(1)
	<-gate.Started

	// 桥接器不做状态码映射，503 也按原始响应返回。
	gate.Release(503, `{"error":"warming up"}`)
	out := advanceUntilResolved(t, clock, done)

	require.NoError(t, out.err)
	assert.Equal(t, 503, out.resp.Status)
	assert.JSONEq(t, `{"error":"warming up"}`, string(out.resp.Body))
	assert.Equal(t, "application/json", out.resp.Header.Get("Content-Type"))
	assert.False(t, b.InFlight())
}

func TestCancel_ResolvesAtNextTick(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{Provider: "stub", Transport: gate}, clock, nil)

	// 空闲时取消是无操作。
	b.Cancel()

	done := dispatch(t, context.Background(), b)
	clock.BlockUntil(1)
	<-gate.Started

	// 标志未抬起的节拍不会解析操作。
	clock.Advance(bridge.DefaultPollInterval)
	select {
	case out := <-done:
		t.Fatalf("resolved prematurely: %+v", out)
	default:
	}

	b.Cancel()
	clock.Advance(bridge.DefaultPollInterval)

	out := <-done
	e := testutil.AssertErrorCode(t, out.err, media.ErrCancelled)
	assert.Equal(t, "stub", e.Provider)
	assert.Nil(t, out.resp)
	assert.False(t, b.InFlight())
}

func TestDo_TimeoutCarriesElapsed(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{
		Provider:     "stub",
		Timeout:      200 * time.Millisecond,
		PollInterval: 50 * time.Millisecond,
		Transport:    gate,
	}, clock, nil)

	done := dispatch(t, context.Background(), b)
	clock.BlockUntil(1)
	<-gate.Started

	// 节拍落在 50/100/150/200/250ms；首个超过超时的节拍在 250ms。
	clock.Advance(250 * time.Millisecond)

	out := <-done
	e := testutil.AssertErrorCode(t, out.err, media.ErrTimeout)
	assert.Contains(t, e.Message, "250ms")
	assert.True(t, e.Retryable)
	assert.Nil(t, out.resp)
}

func TestDo_SecondConcurrentOperationIsBusy(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{Provider: "stub", Transport: gate}, clock, nil)

	done := dispatch(t, context.Background(), b)
	clock.BlockUntil(1)
	<-gate.Started
	require.True(t, b.InFlight())

	req, err := http.NewRequest(http.MethodGet, "https://media.invalid/voices", nil)
	require.NoError(t, err)
	_, err = b.Do(context.Background(), req)
	testutil.AssertErrorCode(t, err, media.ErrBusy)

	// 第一个操作解析后槽位空出，桥接器恢复可用。
	gate.Release(200, `{"ok":true}`)
	out := advanceUntilResolved(t, clock, done)
	require.NoError(t, out.err)
	assert.False(t, b.InFlight())

	done2 := dispatch(t, context.Background(), b)
	clock.BlockUntil(2)
	<-gate.Started
	gate.Release(200, `{"ok":true}`)
	out2 := advanceUntilResolved(t, clock, done2)
	require.NoError(t, out2.err)
}

func TestDo_TransportFailureMapsUnavailable(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{Provider: "stub", Transport: gate}, clock, nil)

	done := dispatch(t, context.Background(), b)
	clock.BlockUntil(1)
	<-gate.Started
	gate.ReleaseError(errors.New("connection refused"))

	out := advanceUntilResolved(t, clock, done)
	e := testutil.AssertErrorCode(t, out.err, media.ErrUnavailable)
	assert.True(t, e.Retryable)
	assert.Contains(t, out.err.Error(), "connection refused")
}

func TestDo_CallerContextCancellation(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{Provider: "stub", Transport: gate}, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := dispatch(t, ctx, b)
	clock.BlockUntil(1)
	<-gate.Started

	cancel()
	out := advanceUntilResolved(t, clock, done)
	testutil.AssertErrorCode(t, out.err, media.ErrCancelled)
}

func TestDo_ResolvesExactlyOnce(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{Provider: "stub", Transport: gate}, clock, nil)

	done := dispatch(t, context.Background(), b)
	clock.BlockUntil(1)
	<-gate.Started

	// 完成与取消在同一窗口竞争，两种解析都合法，但只能有一种。
	gate.Release(200, `{"ok":true}`)
	b.Cancel()
	out := advanceUntilResolved(t, clock, done)

	if out.err == nil {
		assert.Equal(t, 200, out.resp.Status)
	} else {
		testutil.AssertErrorCode(t, out.err, media.ErrCancelled)
	}

	clock.Advance(bridge.DefaultPollInterval)
	clock.Advance(bridge.DefaultPollInterval)
	select {
	case extra := <-done:
		t.Fatalf("resolved twice: %+v", extra)
	default:
	}
	assert.False(t, b.InFlight())
}

func TestDo_SystemClockEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"text":"hello"}`))
	}))
	defer srv.Close()

	b := bridge.New(bridge.Config{Provider: "stub", PollInterval: 5 * time.Millisecond}, nil, nil)
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := b.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"text":"hello"}`, string(resp.Body))
}

func TestDo_RateLimiterAllowsBurst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := bridge.New(bridge.Config{
		Provider:          "stub",
		PollInterval:      time.Millisecond,
		RequestsPerSecond: 50,
		Burst:             2,
	}, nil, nil)

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := b.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
	}
}
