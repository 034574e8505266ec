// Package audio 提供媒体管线的音频编解码：WAV 的解析与封装、
// OGG/Opus 解码、声道折叠与重采样，以及 STT 上传所需的
// 16kHz 单声道归一化。所有失败以 DECODE_ERROR 返回，
// 与传输层错误严格区分。
package audio

import (
	"encoding/binary"

	"github.com/BaSui01/mediaflow/media"
)

// Detect 通过魔数识别容器格式。
func Detect(b []byte) media.AudioFormat {
	switch {
	case len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE":
		return media.FormatWAV
	case len(b) >= 4 && string(b[0:4]) == "OggS":
		return media.FormatOggOpus
	default:
		return media.FormatUnknown
	}
}

// Decode 按容器格式把字节解码为 PCM Clip。
func Decode(b []byte) (*media.Clip, error) {
	if len(b) == 0 {
		return nil, media.NewError(media.ErrDecode, "empty audio payload")
	}
	switch Detect(b) {
	case media.FormatWAV:
		return DecodeWAV(b)
	case media.FormatOggOpus:
		return DecodeOggOpus(b)
	default:
		return nil, media.NewError(media.ErrDecode, "unrecognized audio container")
	}
}

// DecodePCM 把无容器的小端 16 位 PCM 字节构造成 Clip，供返回
// 裸采样流的后端使用。
func DecodePCM(b []byte, sampleRate, channels int) (*media.Clip, error) {
	if len(b) == 0 || len(b)%2 != 0 {
		return nil, media.NewError(media.ErrDecode, "pcm payload must be non-empty and 16-bit aligned")
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, media.NewError(media.ErrDecode, "invalid pcm stream parameters")
	}
	return media.NewClip(sampleRate, channels, media.FormatPCM, pcmToInt16(b)), nil
}

// DecodeWAV 解析 RIFF/WAVE 字节，仅支持 16 位 PCM。
func DecodeWAV(b []byte) (*media.Clip, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, media.NewError(media.ErrDecode, "not a RIFF/WAVE stream")
	}

	var (
		sampleRate int
		channels   int
		bits       int
		data       []byte
		haveFmt    bool
	)

	offset := 12
	for offset+8 <= len(b) {
		id := string(b[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(b[offset+4 : offset+8]))
		body := offset + 8
		if size < 0 || body+size > len(b) {
			return nil, media.NewError(media.ErrDecode, "truncated WAV chunk")
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, media.NewError(media.ErrDecode, "malformed fmt chunk")
			}
			audioFormat := binary.LittleEndian.Uint16(b[body:])
			if audioFormat != 1 {
				return nil, media.NewError(media.ErrDecode, "only PCM WAV is supported")
			}
			channels = int(binary.LittleEndian.Uint16(b[body+2:]))
			sampleRate = int(binary.LittleEndian.Uint32(b[body+4:]))
			bits = int(binary.LittleEndian.Uint16(b[body+14:]))
			haveFmt = true
		case "data":
			data = b[body : body+size]
		}

		offset = body + size
		if size%2 == 1 {
			offset++ // 块长度按字对齐
		}
	}

	if !haveFmt || data == nil {
		return nil, media.NewError(media.ErrDecode, "missing fmt or data chunk")
	}
	if bits != 16 {
		return nil, media.NewError(media.ErrDecode, "only 16-bit PCM is supported")
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, media.NewError(media.ErrDecode, "invalid fmt parameters")
	}

	samples := pcmToInt16(data)
	if len(samples) == 0 {
		return nil, media.NewError(media.ErrDecode, "WAV stream carries no samples")
	}
	return media.NewClip(sampleRate, channels, media.FormatWAV, samples), nil
}

// EncodeWAV 把 PCM Clip 封装为 16 位 WAV 字节。
func EncodeWAV(c *media.Clip) ([]byte, error) {
	if c == nil || c.Released() {
		return nil, media.NewError(media.ErrDecode, "clip already released")
	}
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return nil, media.NewError(media.ErrDecode, "clip carries invalid parameters")
	}

	dataLen := len(c.Samples) * 2
	out := make([]byte, 44+dataLen)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataLen))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(c.Channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(c.SampleRate*c.Channels*2))
	binary.LittleEndian.PutUint16(out[32:34], uint16(c.Channels*2))
	binary.LittleEndian.PutUint16(out[34:36], 16)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataLen))
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(s))
	}
	return out, nil
}

// pcmToInt16 将小端 PCM 字节转换为 int16 采样。
func pcmToInt16(buf []byte) []int16 {
	samples := make([]int16, 0, len(buf)/2)
	for i := 0; i+1 < len(buf); i += 2 {
		samples = append(samples, int16(binary.LittleEndian.Uint16(buf[i:i+2])))
	}
	return samples
}
