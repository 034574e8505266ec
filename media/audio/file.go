package audio

import (
	"context"
	"os"

	"github.com/BaSui01/mediaflow/media"
)

// TranscribeFile 读取音频文件并执行转写。
func TranscribeFile(ctx context.Context, t media.Transcriber, path, language string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", media.NewError(media.ErrArgument, "read audio file").WithCause(err)
	}
	return t.Transcribe(ctx, &media.TranscribeRequest{Audio: data, Language: language})
}

// SynthesizeToFile 合成语音并把 WAV 字节写入 path。
// 返回的 Clip 为调用方所有，写盘后即归还。
func SynthesizeToFile(ctx context.Context, s media.Synthesizer, req *media.SynthesizeRequest, path string) error {
	clip, err := s.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	defer clip.Release()

	wav, err := EncodeWAV(clip)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return media.NewError(media.ErrArgument, "write audio file").WithCause(err)
	}
	return nil
}
