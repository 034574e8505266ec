package media

import (
	"sync/atomic"
	"time"

	"github.com/BaSui01/mediaflow/internal/pool"
)

// AudioFormat 标识音频容器/编码格式。
type AudioFormat string

const (
	FormatWAV     AudioFormat = "wav"
	FormatOggOpus AudioFormat = "ogg_opus"
	FormatPCM     AudioFormat = "pcm"
	FormatUnknown AudioFormat = "unknown"
)

// samplePool 复用解码后的 PCM 采样缓冲。Clip.Release 归还缓冲。
var samplePool = pool.New(
	func() []int16 { return make([]int16, 0, 16384) },
	func(s *[]int16) { *s = (*s)[:0] },
)

// Clip 一段已解码的 PCM 音频载荷。
// Samples 缓冲取自内部对象池；Release 之后 Clip 失效，
// 缓存查找会把失效条目按缺失处理并移除。
type Clip struct {
	SampleRate int         // 采样率，Hz
	Channels   int         // 声道数
	Format     AudioFormat // 解码前的来源格式
	Samples    []int16     // PCM16 采样，多声道按帧交错

	released atomic.Bool
}

// NewClip 从对象池取缓冲并拷入采样，构造 Clip。
func NewClip(sampleRate, channels int, format AudioFormat, samples []int16) *Clip {
	buf := samplePool.Get()
	buf = append(buf, samples...)
	return &Clip{
		SampleRate: sampleRate,
		Channels:   channels,
		Format:     format,
		Samples:    buf,
	}
}

// Clone 返回一份由调用方独立持有的拷贝。
// 缓存持有原件、对外发放拷贝，避免 FIFO 逐出释放原件时
// 与调用方的使用发生竞争。已释放的 Clip 克隆为 nil。
func (c *Clip) Clone() *Clip {
	if c == nil || c.Released() {
		return nil
	}
	return NewClip(c.SampleRate, c.Channels, c.Format, c.Samples)
}

// Duration 返回按采样率折算的播放时长。
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Size 返回载荷字节数（16 位采样）。
func (c *Clip) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Samples) * 2
}

// Release 将采样缓冲归还对象池。幂等，重复调用无副作用。
func (c *Clip) Release() {
	if c == nil || !c.released.CompareAndSwap(false, true) {
		return
	}
	buf := c.Samples
	c.Samples = nil
	samplePool.Put(buf)
}

// Released 报告载荷是否已被释放。
func (c *Clip) Released() bool {
	return c != nil && c.released.Load()
}
