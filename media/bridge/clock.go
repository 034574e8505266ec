package bridge

import "time"

// Clock 提供当前时间与节拍源，轮询循环的推进完全由它驱动。
type Clock interface {
	// Now 返回当前墙钟时间。
	Now() time.Time

	// NewTicker 返回一个按 d 间隔发出节拍的 Ticker。
	NewTicker(d time.Duration) Ticker
}

// Ticker 周期节拍源。
type Ticker interface {
	// C 返回节拍通道。
	C() <-chan time.Time

	// Stop 停止节拍并释放底层资源。
	Stop()
}

// SystemClock 使用真实时间实现 Clock。
type SystemClock struct{}

// Now 返回 time.Now()。
func (SystemClock) Now() time.Time { return time.Now() }

// NewTicker 包装 time.NewTicker。
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{ticker: time.NewTicker(d)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time { return t.ticker.C }

func (t *systemTicker) Stop() { t.ticker.Stop() }
