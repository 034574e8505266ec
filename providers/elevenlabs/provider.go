// Package elevenlabs 适配 ElevenLabs 托管 API 的文本转语音能力。
//
// 线上契约是单段式的：POST JSON（文本、模型、voice_settings 中的
// 语速）并携带 Bearer 凭证，响应体直接是编码后的音频字节。语速
// 始终被钳制到 [0.25, 2.0]。
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/audio"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/media/cache"
	"github.com/BaSui01/mediaflow/media/observability"
	"github.com/BaSui01/mediaflow/providers"
)

// pcmSampleRate 请求 pcm_16000 输出，裸 PCM 直接进媒体管线。
const pcmSampleRate = 16000

// defaultVoiceID Rachel，官方默认音色。
const defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

// Provider 通过 ElevenLabs API 执行文本转语音。
type Provider struct {
	cfg       providers.TTSConfig
	bridge    *bridge.Bridge
	store     *cache.Store
	logger    *zap.Logger
	metrics   *observability.Metrics
	probe     *http.Client
	speedBits atomic.Uint64
}

// New 构造适配器并填充缺省配置。构造不发起任何网络 I/O。
func New(cfg providers.TTSConfig, clock bridge.Clock, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.Model == "" {
		cfg.Model = "eleven_multilingual_v2"
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultVoiceID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("elevenlabs")

	p := &Provider{
		cfg:    cfg,
		logger: logger,
		probe:  providers.ProbeClient(cfg.Transport),
		bridge: bridge.New(bridge.Config{
			Timeout:           cfg.Timeout,
			PollInterval:      cfg.PollInterval,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Provider:          providers.ProviderElevenLabs,
			Transport:         cfg.Transport,
		}, clock, logger),
	}
	initial := cfg.Speed
	if initial == 0 {
		initial = 1.0
	}
	p.speedBits.Store(math.Float64bits(media.ClampSpeed(initial)))
	if cfg.CacheEnabled {
		p.store = cache.NewStore(cfg.CacheSize, logger)
	}
	return p
}

// Name 返回提供商标识。
func (p *Provider) Name() string { return providers.ProviderElevenLabs }

// Instrument 注入度量记录器。未注入时所有记录调用为空操作。
func (p *Provider) Instrument(m *observability.Metrics) { p.metrics = m }

// SetSpeed 更新语速倍率，越界值钳制到支持区间并返回实际生效值。
func (p *Provider) SetSpeed(multiplier float64) float64 {
	clamped := media.ClampSpeed(multiplier)
	p.speedBits.Store(math.Float64bits(clamped))
	p.logger.Debug("speech speed updated",
		zap.Float64("requested", multiplier),
		zap.Float64("applied", clamped))
	return clamped
}

func (p *Provider) speed() float64 {
	return math.Float64frombits(p.speedBits.Load())
}

// Cancel 抬起在途操作的取消标志。
func (p *Provider) Cancel() { p.bridge.Cancel() }

// IsAvailable 以配置凭证探测账号端点。
func (p *Provider) IsAvailable(ctx context.Context) bool {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	p.authorize(ctx, req)
	resp, err := p.probe.Do(req)
	if err != nil {
		p.logger.Debug("availability probe failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Synthesize 将文本合成为音频。命中缓存时直接返回副本，不触网。
func (p *Provider) Synthesize(ctx context.Context, req *media.SynthesizeRequest) (*media.Clip, error) {
	ctx, done := p.metrics.StartRequest(ctx, p.Name(), "tts")
	clip, err := p.synthesize(ctx, req)
	done(err)
	return clip, err
}

type synthesisRequest struct {
	Text          string `json:"text"`
	ModelID       string `json:"model_id"`
	VoiceSettings struct {
		Speed float64 `json:"speed"`
	} `json:"voice_settings"`
}

func (p *Provider) synthesize(ctx context.Context, req *media.SynthesizeRequest) (*media.Clip, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, media.NewError(media.ErrArgument, "text input is required").
			WithProvider(p.Name())
	}
	if providers.Credential(ctx, p.cfg.APIKey) == "" {
		return nil, media.NewError(media.ErrConfiguration, "credential is required").
			WithProvider(p.Name())
	}

	voice := providers.Choose(req.Voice, p.cfg.Voice)
	speed := p.speed()

	var key string
	if p.store != nil {
		key = cache.Key("tts", p.Name(), req.Text, voice, p.cfg.Model, providers.FormatSpeed(speed))
		if entry, ok := p.store.Get(key); ok {
			if cached, ok := entry.(*media.Clip); ok {
				if dup := cached.Clone(); dup != nil {
					p.metrics.RecordCacheHit(ctx, p.Name())
					return dup, nil
				}
			}
		}
		p.metrics.RecordCacheMiss(ctx, p.Name())
	}

	body := synthesisRequest{Text: req.Text, ModelID: p.cfg.Model}
	body.VoiceSettings.Speed = speed
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, media.NewError(media.ErrArgument, "encode synthesis request").
			WithProvider(p.Name()).WithCause(err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") +
		"/v1/text-to-speech/" + voice + "?output_format=pcm_16000"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, media.NewError(media.ErrArgument, "build synthesis request").
			WithProvider(p.Name()).WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	p.authorize(ctx, httpReq)

	resp, err := p.bridge.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, providers.MapStatus(resp.Status, resp.Body, p.Name())
	}
	if len(resp.Body) == 0 {
		return nil, media.NewError(media.ErrDecode, "synthesis returned empty audio").
			WithProvider(p.Name())
	}

	clip, err := audio.DecodePCM(resp.Body, pcmSampleRate, 1)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordPayload(ctx, p.Name(), len(resp.Body))

	if p.store != nil {
		// 缓存持有原件，调用方拿副本，避免淘汰释放与使用竞争。
		p.store.Put(key, clip)
		return clip.Clone(), nil
	}
	return clip, nil
}

type voiceEntry struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
	Labels  struct {
		Gender string `json:"gender"`
	} `json:"labels"`
	PreviewURL string `json:"preview_url"`
}

// ListVoices 返回账号可用的音色列表。
func (p *Provider) ListVoices(ctx context.Context) ([]media.Voice, error) {
	if providers.Credential(ctx, p.cfg.APIKey) == "" {
		return nil, media.NewError(media.ErrConfiguration, "credential is required").
			WithProvider(p.Name())
	}
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/voices"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, media.NewError(media.ErrArgument, "build voice list request").
			WithProvider(p.Name()).WithCause(err)
	}
	p.authorize(ctx, httpReq)

	resp, err := p.bridge.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, providers.MapStatus(resp.Status, resp.Body, p.Name())
	}

	var envelope struct {
		Voices []voiceEntry `json:"voices"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, media.NewError(media.ErrDecode, "malformed voice list response").
			WithProvider(p.Name()).WithCause(err)
	}

	voices := make([]media.Voice, 0, len(envelope.Voices))
	for _, v := range envelope.Voices {
		voices = append(voices, media.Voice{
			ID:      v.VoiceID,
			Name:    v.Name,
			Gender:  v.Labels.Gender,
			Preview: v.PreviewURL,
		})
	}
	return voices, nil
}

// Close 释放适配器持有的缓存资源。
func (p *Provider) Close() {
	if p.store != nil {
		p.store.Clear()
	}
}

// authorize 同时设置 Bearer 与 xi-api-key 两种凭证头，新旧网关均可识别。
func (p *Provider) authorize(ctx context.Context, req *http.Request) {
	if cred := providers.Credential(ctx, p.cfg.APIKey); cred != "" {
		req.Header.Set("Authorization", "Bearer "+cred)
		req.Header.Set("xi-api-key", cred)
	}
}
