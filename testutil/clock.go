// =============================================================================
// ⏱️ 假时钟
// =============================================================================
// 手动推进的时钟实现，配合 bridge 的轮询循环做确定性调度测试
// =============================================================================
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/BaSui01/mediaflow/media/bridge"
)

// FakeClock 实现 bridge.Clock，时间只在 Advance 被调用时前进。
// 节拍采用同步投递：Advance 会阻塞到每个到期节拍被消费（或节拍器
// 停止）为止，因此测试代码在 Advance 返回后可以确定被测循环已经
// 处理完相应节拍。
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFakeClock 返回从固定历元开始的假时钟。
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Unix(1700000000, 0).UTC()}
}

// Now 返回当前假时间。
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker 注册一个按 d 间隔到期的节拍器。
func (c *FakeClock) NewTicker(d time.Duration) bridge.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{
		ch:       make(chan time.Time),
		stop:     make(chan struct{}),
		interval: d,
		next:     c.now.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance 将时钟推进 d，并按时间顺序同步投递期间所有到期的节拍。
func (c *FakeClock) Advance(d time.Duration) {
	type delivery struct {
		ticker *fakeTicker
		at     time.Time
	}

	c.mu.Lock()
	target := c.now.Add(d)
	var due []delivery
	for _, t := range c.tickers {
		select {
		case <-t.stop:
			continue
		default:
		}
		for !t.next.After(target) {
			due = append(due, delivery{ticker: t, at: t.next})
			t.next = t.next.Add(t.interval)
		}
	}
	c.now = target
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, dl := range due {
		select {
		case dl.ticker.ch <- dl.at:
		case <-dl.ticker.stop:
		}
	}
}

// BlockUntil 阻塞直到至少 n 个节拍器被创建，用于与被测协程会合。
func (c *FakeClock) BlockUntil(n int) {
	for {
		c.mu.Lock()
		count := len(c.tickers)
		c.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

type fakeTicker struct {
	ch       chan time.Time
	stop     chan struct{}
	once     sync.Once
	interval time.Duration
	next     time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
