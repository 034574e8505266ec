package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pion/opus"
	"github.com/pion/opus/pkg/oggreader"

	"github.com/BaSui01/mediaflow/media"
)

// maxOpusFrameSize Opus 单帧最大采样数（48kHz 下 120ms）。
const maxOpusFrameSize = 5760

// DecodeOggOpus 用纯 Go 解码 OGG/Opus 字节。
// 解码器对个别输入会 panic，这里统一恢复为 DECODE_ERROR。
func DecodeOggOpus(b []byte) (clip *media.Clip, err error) {
	defer func() {
		if r := recover(); r != nil {
			clip = nil
			err = media.NewError(media.ErrDecode, fmt.Sprintf("opus decoder panic: %v", r))
		}
	}()

	ogg, header, err := oggreader.NewWith(bytes.NewReader(b))
	if err != nil {
		return nil, media.NewError(media.ErrDecode, "parse OGG container").WithCause(err)
	}

	sampleRate := int(header.SampleRate)
	channels := int(header.Channels)
	if sampleRate <= 0 || channels <= 0 {
		return nil, media.NewError(media.ErrDecode, "invalid OGG header parameters")
	}

	decoder := opus.NewDecoder()
	outBuf := make([]byte, maxOpusFrameSize*channels*2)

	var samples []int16
	for {
		segments, _, err := ogg.ParseNextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, media.NewError(media.ErrDecode, "parse OGG page").WithCause(err)
		}

		for _, segment := range segments {
			if len(segment) == 0 {
				continue
			}
			// 坏包跳过：容器常混入元数据包与损坏帧
			if _, _, err := decoder.Decode(segment, outBuf); err != nil {
				continue
			}
			samples = append(samples, frameToInt16(outBuf)...)
		}
	}

	if len(samples) == 0 {
		return nil, media.NewError(media.ErrDecode, "no audio samples decoded")
	}
	return media.NewClip(sampleRate, channels, media.FormatOggOpus, samples), nil
}

// frameToInt16 从解码输出缓冲提取采样。
// 解码器不报告写入长度，按尾部全零截断。
func frameToInt16(buf []byte) []int16 {
	samples := make([]int16, 0, len(buf)/2)
	for i := 0; i+1 < len(buf); i += 2 {
		sample := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
		if sample == 0 && i > 0 && restIsZero(buf[i:]) {
			break
		}
		samples = append(samples, sample)
	}
	return samples
}

// restIsZero 报告缓冲剩余部分是否全为零。
func restIsZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
