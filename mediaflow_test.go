package mediaflow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow"
	"github.com/BaSui01/mediaflow/config"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/audio"
)

func wavFixture(t *testing.T) []byte {
	t.Helper()
	clip := media.NewClip(16000, 1, media.FormatWAV, make([]int16, 1600))
	defer clip.Release()
	b, err := audio.EncodeWAV(clip)
	require.NoError(t, err)
	return b
}

func TestNew_DefaultsBuildLocalCapabilities(t *testing.T) {
	svc, err := mediaflow.New(*config.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, svc.STT)
	assert.NotNil(t, svc.TTS)
	// Hosted vision needs a credential, so defaults leave it unset.
	assert.Nil(t, svc.Vision)
}

func TestNew_VisionBuiltWhenCredentialed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Vision.APIKey = "sk-test"

	svc, err := mediaflow.New(*cfg, mediaflow.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NotNil(t, svc.Vision)
	assert.Equal(t, "gpt-4o-mini", svc.Vision.ModelName())
}

func TestNew_UnknownSTTProviderFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.STT.Provider = "deepgram"

	_, err := mediaflow.New(*cfg)
	require.Error(t, err)
	assert.True(t, media.IsCode(err, media.ErrNotSupported))
}

func TestPing_ProbesConfiguredBackends(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.STT.BaseURL = srv.URL
	cfg.TTS.BaseURL = srv.URL
	cfg.Vision.BaseURL = srv.URL
	cfg.Vision.APIKey = "sk-test"

	svc, err := mediaflow.New(*cfg)
	require.NoError(t, err)

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_ReportsUnreachableBackend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.STT.BaseURL = srv.URL
	// Nothing listens here; the synthesizer probe must fail fast.
	cfg.TTS.BaseURL = "http://127.0.0.1:1"

	svc, err := mediaflow.New(*cfg)
	require.NoError(t, err)

	err = svc.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, media.IsCode(err, media.ErrUnavailable))
	assert.True(t, media.IsRetryable(err))
	assert.Contains(t, err.Error(), "alltalk")
}

func TestClose_ReleasesSynthesizerCache(t *testing.T) {
	wav := wavFixture(t)
	var generates atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tts-generate", func(w http.ResponseWriter, r *http.Request) {
		generates.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":          "generate-success",
			"output_file_url": "/audio/out.wav",
		})
	})
	mux.HandleFunc("/audio/out.wav", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(wav)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.TTS.BaseURL = srv.URL

	svc, err := mediaflow.New(*cfg)
	require.NoError(t, err)

	req := &media.SynthesizeRequest{Text: "hello world"}

	first, err := svc.TTS.Synthesize(context.Background(), req)
	require.NoError(t, err)
	first.Release()
	assert.Equal(t, int32(1), generates.Load())

	// Identical request is served from cache.
	second, err := svc.TTS.Synthesize(context.Background(), req)
	require.NoError(t, err)
	second.Release()
	assert.Equal(t, int32(1), generates.Load())

	// Close releases cached payloads, so the next call hits the backend.
	svc.Close()
	third, err := svc.TTS.Synthesize(context.Background(), req)
	require.NoError(t, err)
	third.Release()
	assert.Equal(t, int32(2), generates.Load())
}
