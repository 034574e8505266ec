// Package openai 适配 OpenAI 兼容端点的图文视觉推理能力。
//
// 图像在进入网络前先归一化为固定方形 JPEG 并以 data URI 内嵌到
// chat/completions 消息里；应答取 choices[0].message.content。
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/internal/ctxkeys"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/media/imageutil"
	"github.com/BaSui01/mediaflow/media/observability"
	"github.com/BaSui01/mediaflow/providers"
)

// Provider 通过 OpenAI 兼容 API 执行图文视觉推理。
type Provider struct {
	cfg     providers.VisionConfig
	bridge  *bridge.Bridge
	logger  *zap.Logger
	metrics *observability.Metrics
	probe   *http.Client
}

// New 构造适配器并填充缺省配置。构造不发起任何网络 I/O。
func New(cfg providers.VisionConfig, clock bridge.Clock, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("openai-vision")

	return &Provider{
		cfg:    cfg,
		logger: logger,
		probe:  providers.ProbeClient(cfg.Transport),
		bridge: bridge.New(bridge.Config{
			Timeout:           cfg.Timeout,
			PollInterval:      cfg.PollInterval,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Provider:          providers.ProviderOpenAI,
			Transport:         cfg.Transport,
		}, clock, logger),
	}
}

// Name 返回提供商标识。
func (p *Provider) Name() string { return providers.ProviderOpenAI }

// ModelName 返回当前生效的模型标识。
func (p *Provider) ModelName() string { return p.cfg.Model }

// Instrument 注入度量记录器。未注入时所有记录调用为空操作。
func (p *Provider) Instrument(m *observability.Metrics) { p.metrics = m }

// Cancel 置起取消标志，在飞行中的推理于下一个轮询周期中止。
func (p *Provider) Cancel() { p.bridge.Cancel() }

// IsAvailable 以配置凭证探测模型列表端点。
func (p *Provider) IsAvailable(ctx context.Context) bool {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	if cred := providers.Credential(ctx, p.cfg.APIKey); cred != "" {
		req.Header.Set("Authorization", "Bearer "+cred)
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

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate 对图像与提示词执行一次视觉推理，返回模型的文字描述。
// 输入校验与图像归一化全部发生在任何网络调用之前。
func (p *Provider) Generate(ctx context.Context, req *media.VisionRequest) (string, error) {
	ctx, done := p.metrics.StartRequest(ctx, p.Name(), "vision")
	text, err := p.generate(ctx, req)
	done(err)
	return text, err
}

func (p *Provider) generate(ctx context.Context, req *media.VisionRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return "", media.NewError(media.ErrArgument, "prompt input is required").
			WithProvider(p.Name())
	}
	if len(req.Image) == 0 {
		return "", media.NewError(media.ErrArgument, "image input is required").
			WithProvider(p.Name())
	}
	cred := providers.Credential(ctx, p.cfg.APIKey)
	if cred == "" {
		return "", media.NewError(media.ErrConfiguration, "credential is required").
			WithProvider(p.Name())
	}

	jpeg, err := imageutil.NormalizeSquare(req.Image, p.cfg.ImageDimension, p.cfg.ImageQuality)
	if err != nil {
		return "", err
	}

	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: req.Prompt},
			{Type: "image_url", ImageURL: &imageRef{URL: imageutil.DataURI(jpeg)}},
		},
	})

	payload, err := json.Marshal(chatRequest{
		Model:     p.model(ctx),
		Messages:  messages,
		MaxTokens: p.cfg.MaxTokens,
	})
	if err != nil {
		return "", media.NewError(media.ErrArgument, "encode vision request").
			WithProvider(p.Name()).WithCause(err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", media.NewError(media.ErrArgument, "build vision request").
			WithProvider(p.Name()).WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cred)

	resp, err := p.bridge.Do(ctx, httpReq)
	if err != nil {
		return "", err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return "", providers.MapStatus(resp.Status, resp.Body, p.Name())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", media.NewError(media.ErrDecode, "malformed vision response").
			WithProvider(p.Name()).WithCause(err)
	}
	if len(out.Choices) == 0 {
		return "", media.NewError(media.ErrProtocol, "vision response carries no choices").
			WithProvider(p.Name())
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", media.NewError(media.ErrDecode, "vision produced empty description").
			WithProvider(p.Name())
	}
	p.metrics.RecordPayload(ctx, p.Name(), len(jpeg))
	return text, nil
}

func (p *Provider) model(ctx context.Context) string {
	if override, ok := ctxkeys.Model(ctx); ok {
		return override
	}
	return p.cfg.Model
}
