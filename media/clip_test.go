package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClip_DurationAndSize(t *testing.T) {
	clip := NewClip(16000, 1, FormatWAV, make([]int16, 16000))
	defer clip.Release()

	assert.Equal(t, time.Second, clip.Duration())
	assert.Equal(t, 32000, clip.Size())
}

func TestClip_DurationStereo(t *testing.T) {
	clip := NewClip(8000, 2, FormatWAV, make([]int16, 8000))
	defer clip.Release()

	// 8000 个交错采样 = 4000 帧 = 0.5 秒
	assert.Equal(t, 500*time.Millisecond, clip.Duration())
}

func TestClip_ReleaseIsIdempotent(t *testing.T) {
	clip := NewClip(16000, 1, FormatWAV, []int16{1, 2, 3})
	require.False(t, clip.Released())

	clip.Release()
	assert.True(t, clip.Released())
	assert.Nil(t, clip.Samples)

	clip.Release() // 第二次无副作用
	assert.True(t, clip.Released())
}

func TestClip_CloneIsIndependent(t *testing.T) {
	src := NewClip(16000, 1, FormatWAV, []int16{1, 2, 3})
	dup := src.Clone()
	require.NotNil(t, dup)

	src.Release()

	assert.False(t, dup.Released())
	assert.Equal(t, []int16{1, 2, 3}, dup.Samples)
	dup.Release()
}

func TestClip_CloneOfReleasedIsNil(t *testing.T) {
	src := NewClip(16000, 1, FormatWAV, []int16{1})
	src.Release()
	assert.Nil(t, src.Clone())
}

func TestClip_NewClipCopiesInput(t *testing.T) {
	samples := []int16{1, 2, 3}
	clip := NewClip(16000, 1, FormatWAV, samples)
	defer clip.Release()

	samples[0] = 99
	assert.Equal(t, int16(1), clip.Samples[0])
}
