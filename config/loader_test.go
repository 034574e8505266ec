package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mediaflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "whisper-server", cfg.STT.Provider)
	assert.Equal(t, "alltalk", cfg.TTS.Provider)
	assert.Equal(t, "openai", cfg.Vision.Provider)
	assert.Equal(t, 30*time.Second, cfg.STT.Timeout)
	assert.Equal(t, 1.0, cfg.TTS.Speed)
	assert.Equal(t, 512, cfg.Vision.ImageDimension)

	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeTempYAML(t, `
log:
  level: debug
  format: console
stt:
  provider: huggingface
  api_key: hf-secret
  model: openai/whisper-small
  timeout: 90s
tts:
  provider: elevenlabs
  speed: 1.5
vision:
  max_tokens: 200
`)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "huggingface", cfg.STT.Provider)
	assert.Equal(t, "hf-secret", cfg.STT.APIKey)
	assert.Equal(t, "openai/whisper-small", cfg.STT.Model)
	assert.Equal(t, 90*time.Second, cfg.STT.Timeout)
	assert.Equal(t, "elevenlabs", cfg.TTS.Provider)
	assert.Equal(t, 1.5, cfg.TTS.Speed)
	assert.Equal(t, 200, cfg.Vision.MaxTokens)

	// 未覆盖的字段保持默认值。
	assert.Equal(t, "en", cfg.STT.Language)
	assert.Equal(t, "female_01.wav", cfg.TTS.Voice)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeTempYAML(t, `
stt:
  provider: huggingface
`)
	t.Setenv("MEDIAFLOW_STT_PROVIDER", "whisper-server")
	t.Setenv("MEDIAFLOW_STT_BASE_URL", "http://10.0.0.5:8080")
	t.Setenv("MEDIAFLOW_TTS_TIMEOUT", "2m")
	t.Setenv("MEDIAFLOW_TTS_CACHE_ENABLED", "false")
	t.Setenv("MEDIAFLOW_VISION_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("MEDIAFLOW_LOG_OUTPUT_PATHS", "stdout, /var/log/mediaflow.log")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "whisper-server", cfg.STT.Provider)
	assert.Equal(t, "http://10.0.0.5:8080", cfg.STT.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.TTS.Timeout)
	assert.False(t, cfg.TTS.CacheEnabled)
	assert.Equal(t, 2.5, cfg.Vision.RequestsPerSecond)
	assert.Equal(t, []string{"stdout", "/var/log/mediaflow.log"}, cfg.Log.OutputPaths)
}

func TestLoad_CustomEnvPrefix(t *testing.T) {
	t.Setenv("SPEECH_STT_LANGUAGE", "zh")

	cfg, err := NewLoader().WithEnvPrefix("SPEECH").Load()
	require.NoError(t, err)
	assert.Equal(t, "zh", cfg.STT.Language)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().
		WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).
		Load()
	require.NoError(t, err)
	assert.Equal(t, "whisper-server", cfg.STT.Provider)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeTempYAML(t, "stt: [not: a: mapping")

	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestLoad_ValidatorRuns(t *testing.T) {
	called := false
	_, err := NewLoader().
		WithValidator(func(c *Config) error {
			called = true
			return nil
		}).
		Load()
	require.NoError(t, err)
	assert.True(t, called)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "verbose"
	cfg.TTS.Speed = 9.0
	cfg.STT.CacheEnabled = true
	cfg.STT.CacheSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "tts speed")
	assert.Contains(t, err.Error(), "stt cache_size")
}

func TestValidate_SampleRateBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.SampleRate = 1.5
	require.Error(t, cfg.Validate())

	cfg.Telemetry.SampleRate = 1.0
	require.NoError(t, cfg.Validate())
}
