// Package whisperserver 适配本地 Whisper 推理服务的语音转文本能力。
//
// 线上契约：POST 16kHz 单声道 WAV 字节到 /inference，成功响应为
// {"text": ...} JSON 或裸字符串；401 映射为凭证错误，503 映射为
// 模型预热中的可重试错误。
package whisperserver

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/audio"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/media/cache"
	"github.com/BaSui01/mediaflow/media/observability"
	"github.com/BaSui01/mediaflow/providers"
)

// Provider 通过本地 Whisper 服务执行语音转文本。
type Provider struct {
	cfg     providers.STTConfig
	bridge  *bridge.Bridge
	store   *cache.Store
	logger  *zap.Logger
	metrics *observability.Metrics
	probe   *http.Client
}

// New 构造适配器并填充缺省配置。构造不发起任何网络 I/O。
func New(cfg providers.STTConfig, clock bridge.Clock, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("whisper-server")

	p := &Provider{
		cfg:    cfg,
		logger: logger,
		probe:  providers.ProbeClient(cfg.Transport),
		bridge: bridge.New(bridge.Config{
			Timeout:           cfg.Timeout,
			PollInterval:      cfg.PollInterval,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Provider:          providers.ProviderWhisperServer,
			Transport:         cfg.Transport,
		}, clock, logger),
	}
	if cfg.CacheEnabled {
		p.store = cache.NewStore(cfg.CacheSize, logger)
	}
	return p
}

// Name 返回提供商标识。
func (p *Provider) Name() string { return providers.ProviderWhisperServer }

// Instrument 注入度量记录器。未注入时所有记录调用为空操作。
func (p *Provider) Instrument(m *observability.Metrics) { p.metrics = m }

// Transcribe 转写音频并返回文本。
func (p *Provider) Transcribe(ctx context.Context, req *media.TranscribeRequest) (string, error) {
	ctx, done := p.metrics.StartRequest(ctx, p.Name(), "stt")
	t, err := p.transcribe(ctx, req)
	done(err)
	if err != nil {
		return "", err
	}
	return t.text, nil
}

// TranscribeWithConfidence 转写音频并附带启发式置信度评分。
func (p *Provider) TranscribeWithConfidence(ctx context.Context, req *media.TranscribeRequest) (*media.TranscriptionResult, error) {
	ctx, done := p.metrics.StartRequest(ctx, p.Name(), "stt")
	t, err := p.transcribe(ctx, req)
	done(err)
	if err != nil {
		return nil, err
	}
	result := providers.ScoreTranscription(t.text, req.ExpectedText, p.language(req), t.duration)
	result.Words = t.words
	return result, nil
}

// Cancel 抬起在途操作的取消标志。
func (p *Provider) Cancel() { p.bridge.Cancel() }

// IsAvailable 探测服务健康端点。探测失败只降级为不可用，不报错。
func (p *Provider) IsAvailable(ctx context.Context) bool {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := p.probe.Do(req)
	if err != nil {
		p.logger.Debug("availability probe failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Close 释放适配器持有的缓存资源。
func (p *Provider) Close() {
	if p.store != nil {
		p.store.Clear()
	}
}

type transcription struct {
	text     string
	words    []media.Word
	duration time.Duration
}

func (p *Provider) transcribe(ctx context.Context, req *media.TranscribeRequest) (*transcription, error) {
	if req == nil || len(req.Audio) == 0 {
		return nil, media.NewError(media.ErrArgument, "audio input is required").
			WithProvider(p.Name())
	}
	language := p.language(req)

	var key string
	if p.store != nil {
		key = cache.Key("stt", p.Name(), cache.Digest(req.Audio), language)
		if entry, ok := p.store.Get(key); ok {
			if tp, ok := entry.(*cache.TextPayload); ok {
				p.metrics.RecordCacheHit(ctx, p.Name())
				// 命中仍需本地解码恢复时长；这条路径不触网。
				duration, err := decodedDuration(req.Audio)
				if err != nil {
					return nil, err
				}
				return &transcription{text: tp.Text(), duration: duration}, nil
			}
		}
		p.metrics.RecordCacheMiss(ctx, p.Name())
	}

	clip, err := audio.NormalizeClip(req.Audio)
	if err != nil {
		return nil, err
	}
	duration := clip.Duration()
	payload, err := audio.EncodeWAV(clip)
	clip.Release()
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/inference"
	if language != "" {
		endpoint += "?language=" + url.QueryEscape(language)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, media.NewError(media.ErrArgument, "build transcription request").
			WithProvider(p.Name()).WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "audio/wav")
	if cred := providers.Credential(ctx, p.cfg.APIKey); cred != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cred)
	}

	resp, err := p.bridge.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	text, words, err := providers.ParseTranscript(resp, p.Name())
	if err != nil {
		return nil, err
	}

	p.metrics.RecordPayload(ctx, p.Name(), len(payload))
	if p.store != nil {
		p.store.Put(key, cache.NewTextPayload(text))
	}
	return &transcription{text: text, words: words, duration: duration}, nil
}

func (p *Provider) language(req *media.TranscribeRequest) string {
	return providers.Choose(req.Language, p.cfg.Language, "en")
}

func decodedDuration(b []byte) (time.Duration, error) {
	clip, err := audio.Decode(b)
	if err != nil {
		return 0, err
	}
	d := clip.Duration()
	clip.Release()
	return d, nil
}
