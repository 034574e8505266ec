// Package alltalk 适配本地 AllTalk 服务的文本转语音能力。
//
// 线上契约是两段式的：先向 /api/tts-generate 提交多部分表单，拿到
// 携带生成状态与相对媒体地址的 JSON；再经同一桥接器二次 GET 取回
// 音频字节。非 success 状态映射为协议错误。
package alltalk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/internal/pool"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/audio"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/media/cache"
	"github.com/BaSui01/mediaflow/media/normalize"
	"github.com/BaSui01/mediaflow/media/observability"
	"github.com/BaSui01/mediaflow/providers"
)

// effectiveSpeed AllTalk 不支持语速调节，生成始终按原速进行。
const effectiveSpeed = 1.0

// Provider 通过本地 AllTalk 服务执行文本转语音。
type Provider struct {
	cfg     providers.TTSConfig
	bridge  *bridge.Bridge
	store   *cache.Store
	logger  *zap.Logger
	metrics *observability.Metrics
	probe   *http.Client
}

// New 构造适配器并填充缺省配置。构造不发起任何网络 I/O。
func New(cfg providers.TTSConfig, clock bridge.Clock, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:7851"
	}
	if cfg.Voice == "" {
		cfg.Voice = "female_01.wav"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.OutputFileName == "" {
		cfg.OutputFileName = "mediaflow_out"
	}
	if cfg.AutoplayVolume <= 0 {
		cfg.AutoplayVolume = 0.8
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("alltalk")

	p := &Provider{
		cfg:    cfg,
		logger: logger,
		probe:  providers.ProbeClient(cfg.Transport),
		bridge: bridge.New(bridge.Config{
			Timeout:           cfg.Timeout,
			PollInterval:      cfg.PollInterval,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Provider:          providers.ProviderAllTalk,
			Transport:         cfg.Transport,
		}, clock, logger),
	}
	if cfg.CacheEnabled {
		p.store = cache.NewStore(cfg.CacheSize, logger)
	}
	return p
}

// Name 返回提供商标识。
func (p *Provider) Name() string { return providers.ProviderAllTalk }

// Instrument 注入度量记录器。未注入时所有记录调用为空操作。
func (p *Provider) Instrument(m *observability.Metrics) { p.metrics = m }

// Synthesize 将文本合成为音频。命中缓存时直接返回副本，不触网。
func (p *Provider) Synthesize(ctx context.Context, req *media.SynthesizeRequest) (*media.Clip, error) {
	ctx, done := p.metrics.StartRequest(ctx, p.Name(), "tts")
	clip, err := p.synthesize(ctx, req)
	done(err)
	return clip, err
}

// SetSpeed 记录并忽略语速请求。AllTalk 不支持语速调节，按契约
// 只打日志不生效，返回仍然有效的原速。
func (p *Provider) SetSpeed(multiplier float64) float64 {
	clamped := media.ClampSpeed(multiplier)
	p.logger.Warn("speed adjustment not supported by this backend, ignoring",
		zap.Float64("requested", multiplier),
		zap.Float64("clamped", clamped))
	return effectiveSpeed
}

// Cancel 抬起在途操作的取消标志。
func (p *Provider) Cancel() { p.bridge.Cancel() }

// IsAvailable 探测服务就绪端点。
func (p *Provider) IsAvailable(ctx context.Context) bool {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/api/ready"
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

// ListVoices 返回服务端可用的音色列表。
func (p *Provider) ListVoices(ctx context.Context) ([]media.Voice, error) {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/api/voices"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, media.NewError(media.ErrArgument, "build voice list request").
			WithProvider(p.Name()).WithCause(err)
	}
	resp, err := p.bridge.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, providers.MapStatus(resp.Status, resp.Body, p.Name())
	}

	var envelope struct {
		Voices []string `json:"voices"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, media.NewError(media.ErrDecode, "malformed voice list response").
			WithProvider(p.Name()).WithCause(err)
	}

	voices := make([]media.Voice, 0, len(envelope.Voices))
	for _, v := range envelope.Voices {
		voices = append(voices, media.Voice{
			ID:       v,
			Name:     strings.TrimSuffix(v, filepath.Ext(v)),
			Language: p.cfg.Language,
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

func (p *Provider) synthesize(ctx context.Context, req *media.SynthesizeRequest) (*media.Clip, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, media.NewError(media.ErrArgument, "text input is required").
			WithProvider(p.Name())
	}
	voice := providers.Choose(req.Voice, p.cfg.Voice)
	language := providers.Choose(req.Language, p.cfg.Language)

	var key string
	if p.store != nil {
		key = cache.Key("tts", p.Name(), req.Text, voice, language, providers.FormatSpeed(effectiveSpeed))
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

	body, contentType, err := p.generateForm(req.Text, voice, language)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/api/tts-generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, media.NewError(media.ErrArgument, "build synthesis request").
			WithProvider(p.Name()).WithCause(err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := p.bridge.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, providers.MapStatus(resp.Status, resp.Body, p.Name())
	}

	// 标准化两段式响应：解析状态与相对地址，再经桥接器取回音频。
	audioBytes, err := normalize.Resolve(ctx, p.bridge, p.cfg.BaseURL, resp)
	if err != nil {
		return nil, err
	}
	clip, err := audio.Decode(audioBytes)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordPayload(ctx, p.Name(), len(audioBytes))

	if p.store != nil {
		// 缓存持有原件，调用方拿副本，避免淘汰释放与使用竞争。
		p.store.Put(key, clip)
		return clip.Clone(), nil
	}
	return clip, nil
}

// generateForm 组装 tts-generate 的多部分表单。表单体先写入池化
// 缓冲再拷出，摊薄反复分配。
func (p *Provider) generateForm(text, voice, language string) ([]byte, string, error) {
	buf := pool.Buffers.Get()
	defer pool.Buffers.Put(buf)

	writer := multipart.NewWriter(buf)
	fields := map[string]string{
		"text_input":          text,
		"character_voice_gen": voice,
		"language":            language,
		"output_file_name":    p.cfg.OutputFileName,
		"autoplay":            strconv.FormatBool(p.cfg.Autoplay),
		"autoplay_volume":     strconv.FormatFloat(p.cfg.AutoplayVolume, 'f', 1, 64),
	}
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return nil, "", media.NewError(media.ErrArgument, "assemble synthesis form").
				WithProvider(p.Name()).WithCause(err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", media.NewError(media.ErrArgument, "assemble synthesis form").
			WithProvider(p.Name()).WithCause(err)
	}

	body := make([]byte, buf.Len())
	copy(body, buf.Bytes())
	return body, writer.FormDataContentType(), nil
}
