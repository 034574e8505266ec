package bridge

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Operation 一次在途网络交换的句柄。取消标志是原子的，可以从任意
// 协程抬起；轮询循环在下一个节拍观察到标志并中止传输。
type Operation struct {
	id        string
	startedAt time.Time
	cancelled atomic.Bool
}

func newOperation(now time.Time) *Operation {
	return &Operation{
		id:        uuid.NewString(),
		startedAt: now,
	}
}

// ID 返回操作的唯一标识，用于日志关联。
func (o *Operation) ID() string { return o.id }

// StartedAt 返回派发时刻，超时以此为基准计量。
func (o *Operation) StartedAt() time.Time { return o.startedAt }

// Cancel 抬起取消标志。幂等，可重复调用。
func (o *Operation) Cancel() { o.cancelled.Store(true) }

// Cancelled 报告取消标志是否已被抬起。
func (o *Operation) Cancelled() bool { return o.cancelled.Load() }
