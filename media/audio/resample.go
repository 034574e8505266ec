package audio

import (
	"github.com/zeozeozeo/gomplerate"

	"github.com/BaSui01/mediaflow/media"
)

// TargetSTTRate STT 线上契约要求的上传采样率。
const TargetSTTRate = 16000

// Downmix 将多声道按帧平均折叠为单声道。
// 输入已是单声道时原样返回。
func Downmix(c *media.Clip) (*media.Clip, error) {
	if c == nil || c.Released() {
		return nil, media.NewError(media.ErrDecode, "clip already released")
	}
	if c.Channels <= 1 {
		return c, nil
	}

	mono := make([]int16, len(c.Samples)/c.Channels)
	for i := range mono {
		var sum int32
		for ch := 0; ch < c.Channels; ch++ {
			sum += int32(c.Samples[i*c.Channels+ch])
		}
		mono[i] = int16(sum / int32(c.Channels))
	}
	return media.NewClip(c.SampleRate, 1, c.Format, mono), nil
}

// Resample 把单声道 Clip 重采样到目标采样率。
// 采样率一致时原样返回。
func Resample(c *media.Clip, rate int) (*media.Clip, error) {
	if c == nil || c.Released() {
		return nil, media.NewError(media.ErrDecode, "clip already released")
	}
	if rate <= 0 {
		return nil, media.NewError(media.ErrDecode, "invalid target sample rate")
	}
	if c.SampleRate == rate {
		return c, nil
	}
	if c.Channels != 1 {
		return nil, media.NewError(media.ErrDecode, "resample expects mono input")
	}

	resampler, err := gomplerate.NewResampler(1, c.SampleRate, rate)
	if err != nil {
		return nil, media.NewError(media.ErrDecode, "create resampler").WithCause(err)
	}
	out := resampler.ResampleInt16(c.Samples)
	return media.NewClip(rate, 1, c.Format, out), nil
}

// NormalizeClip 把任意支持的容器字节解码为 16kHz 单声道 Clip。
// 中间 Clip 归还对象池，返回的 Clip 由调用方负责释放。
func NormalizeClip(b []byte) (*media.Clip, error) {
	clip, err := Decode(b)
	if err != nil {
		return nil, err
	}

	mono, err := Downmix(clip)
	if err != nil {
		clip.Release()
		return nil, err
	}
	if mono != clip {
		clip.Release()
	}

	narrow, err := Resample(mono, TargetSTTRate)
	if err != nil {
		mono.Release()
		return nil, err
	}
	if narrow != mono {
		mono.Release()
	}
	return narrow, nil
}

// Normalize16kMono 把任意支持的容器字节转换为 16kHz 单声道 WAV 字节，
// 即 STT 上传载荷。
func Normalize16kMono(b []byte) ([]byte, error) {
	clip, err := NormalizeClip(b)
	if err != nil {
		return nil, err
	}
	out, err := EncodeWAV(clip)
	clip.Release()
	return out, err
}
