package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mediaflow/media"
)

// rampClip 构造内容确定的测试 Clip。
func rampClip(rate, channels, frames int) *media.Clip {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = int16(i%2000 - 1000)
	}
	return media.NewClip(rate, channels, media.FormatPCM, samples)
}

func TestDetect(t *testing.T) {
	clip := rampClip(8000, 1, 64)
	defer clip.Release()
	wav, err := EncodeWAV(clip)
	require.NoError(t, err)

	assert.Equal(t, media.FormatWAV, Detect(wav))
	assert.Equal(t, media.FormatOggOpus, Detect([]byte("OggS\x00rest")))
	assert.Equal(t, media.FormatUnknown, Detect([]byte("ID3\x04")))
	assert.Equal(t, media.FormatUnknown, Detect(nil))
}

func TestWAVRoundTrip(t *testing.T) {
	src := rampClip(16000, 2, 256)
	defer src.Release()

	wav, err := EncodeWAV(src)
	require.NoError(t, err)

	got, err := DecodeWAV(wav)
	require.NoError(t, err)
	defer got.Release()

	assert.Equal(t, 16000, got.SampleRate)
	assert.Equal(t, 2, got.Channels)
	assert.Equal(t, src.Samples, got.Samples)
}

func TestDecode_EmptyPayload(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)
	assert.Equal(t, media.ErrDecode, media.GetCode(err))
}

func TestDecodeWAV_NotRIFF(t *testing.T) {
	_, err := DecodeWAV([]byte("definitely not audio data"))
	require.Error(t, err)
	assert.Equal(t, media.ErrDecode, media.GetCode(err))
}

func TestDecodeWAV_TruncatedChunk(t *testing.T) {
	clip := rampClip(8000, 1, 64)
	defer clip.Release()
	wav, err := EncodeWAV(clip)
	require.NoError(t, err)

	_, err = DecodeWAV(wav[:50])
	require.Error(t, err)
	assert.Equal(t, media.ErrDecode, media.GetCode(err))
}

func TestDecodeOggOpus_Garbage(t *testing.T) {
	_, err := DecodeOggOpus([]byte("OggS but not a real container"))
	require.Error(t, err)
	assert.Equal(t, media.ErrDecode, media.GetCode(err))
}

func TestEncodeWAV_ReleasedClip(t *testing.T) {
	clip := rampClip(8000, 1, 8)
	clip.Release()

	_, err := EncodeWAV(clip)
	require.Error(t, err)
	assert.Equal(t, media.ErrDecode, media.GetCode(err))
}

func TestDownmix_StereoAverage(t *testing.T) {
	src := media.NewClip(8000, 2, media.FormatPCM, []int16{10, 20, -10, -20, 100, 100})
	defer src.Release()

	mono, err := Downmix(src)
	require.NoError(t, err)
	defer mono.Release()

	assert.Equal(t, 1, mono.Channels)
	assert.Equal(t, []int16{15, -15, 100}, mono.Samples)
}

func TestDownmix_MonoPassthrough(t *testing.T) {
	src := rampClip(8000, 1, 16)
	defer src.Release()

	mono, err := Downmix(src)
	require.NoError(t, err)
	assert.Same(t, src, mono)
}

func TestResample_SameRatePassthrough(t *testing.T) {
	src := rampClip(16000, 1, 16)
	defer src.Release()

	out, err := Resample(src, 16000)
	require.NoError(t, err)
	assert.Same(t, src, out)
}

func TestResample_UpsamplesDuration(t *testing.T) {
	src := rampClip(8000, 1, 800) // 100ms
	defer src.Release()
	want := src.Duration().Seconds()

	out, err := Resample(src, 16000)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, 16000, out.SampleRate)
	assert.InDelta(t, want, out.Duration().Seconds(), want*0.05)
}

func TestResample_RejectsStereo(t *testing.T) {
	src := rampClip(8000, 2, 16)
	defer src.Release()

	_, err := Resample(src, 16000)
	require.Error(t, err)
	assert.Equal(t, media.ErrDecode, media.GetCode(err))
}

func TestNormalize16kMono(t *testing.T) {
	src := rampClip(8000, 2, 512)
	defer src.Release()
	wav, err := EncodeWAV(src)
	require.NoError(t, err)

	normalized, err := Normalize16kMono(wav)
	require.NoError(t, err)

	got, err := DecodeWAV(normalized)
	require.NoError(t, err)
	defer got.Release()

	assert.Equal(t, TargetSTTRate, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	assert.NotEmpty(t, got.Samples)
}

func TestNormalize16kMono_UnknownContainer(t *testing.T) {
	_, err := Normalize16kMono([]byte("mp3???"))
	require.Error(t, err)
	assert.Equal(t, media.ErrDecode, media.GetCode(err))
}
