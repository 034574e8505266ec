// Package factory resolves provider configuration into concrete capability
// adapters. It imports all adapter sub-packages and maps provider identifiers
// to their constructors, breaking the import cycle that would occur if this
// logic lived in the media package directly.
//
// Unknown identifiers are handled per capability: speech-to-text fails with
// NOT_SUPPORTED, while text-to-speech and vision warn and substitute their
// default adapter. Construction performs no network I/O; only credential
// prerequisites are validated here.
package factory

import (
	"fmt"
	"strings"

	"github.com/BaSui01/mediaflow/config"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/providers"
	"github.com/BaSui01/mediaflow/providers/alltalk"
	"github.com/BaSui01/mediaflow/providers/elevenlabs"
	"github.com/BaSui01/mediaflow/providers/huggingface"
	"github.com/BaSui01/mediaflow/providers/openai"
	"github.com/BaSui01/mediaflow/providers/whisperserver"
	"go.uber.org/zap"
)

// NewTranscriber 按配置构建语音转文本适配器。
// 空标识回退到本地 whisper-server；未知标识返回 NOT_SUPPORTED，
// 错误消息列出受支持的集合。clock 为 nil 时使用系统时钟。
func NewTranscriber(cfg providers.STTConfig, clock bridge.Clock, logger *zap.Logger) (media.Transcriber, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "", providers.ProviderWhisperServer:
		return whisperserver.New(cfg, clock, logger), nil

	case providers.ProviderHuggingFace:
		if cfg.APIKey == "" {
			return nil, media.NewError(media.ErrConfiguration,
				"huggingface transcription requires an api key").
				WithProvider(providers.ProviderHuggingFace)
		}
		return huggingface.New(cfg, clock, logger), nil

	default:
		return nil, media.NewError(media.ErrNotSupported,
			fmt.Sprintf("unknown stt provider %q, supported: %s",
				cfg.Provider, strings.Join(SupportedSTT(), ", "))).
			WithProvider(cfg.Provider)
	}
}

// NewSynthesizer 按配置构建文本转语音适配器。
// 空标识回退到本地 alltalk；未知标识告警后替换为 alltalk。
// clock 为 nil 时使用系统时钟。
func NewSynthesizer(cfg providers.TTSConfig, clock bridge.Clock, logger *zap.Logger) (media.Synthesizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "", providers.ProviderAllTalk:
		return alltalk.New(cfg, clock, logger), nil

	case providers.ProviderElevenLabs:
		if cfg.APIKey == "" {
			return nil, media.NewError(media.ErrConfiguration,
				"elevenlabs synthesis requires an api key").
				WithProvider(providers.ProviderElevenLabs)
		}
		return elevenlabs.New(cfg, clock, logger), nil

	default:
		logger.Named("factory").Warn("unknown tts provider, substituting default",
			zap.String("provider", cfg.Provider),
			zap.String("substitute", providers.ProviderAllTalk))
		cfg.Provider = providers.ProviderAllTalk
		return alltalk.New(cfg, clock, logger), nil
	}
}

// NewVision 按配置构建视觉推理适配器。
// 未知标识告警后替换为唯一实现 openai；凭证缺失返回 CONFIGURATION_ERROR。
// clock 为 nil 时使用系统时钟。
func NewVision(cfg providers.VisionConfig, clock bridge.Clock, logger *zap.Logger) (media.Vision, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Provider != "" && cfg.Provider != providers.ProviderOpenAI {
		logger.Named("factory").Warn("unknown vision provider, substituting sole adapter",
			zap.String("provider", cfg.Provider),
			zap.String("substitute", providers.ProviderOpenAI))
		cfg.Provider = providers.ProviderOpenAI
	}
	if cfg.APIKey == "" {
		return nil, media.NewError(media.ErrConfiguration,
			"vision requires an api key").
			WithProvider(providers.ProviderOpenAI)
	}
	return openai.New(cfg, clock, logger), nil
}

// SupportedSTT 返回受支持的语音转文本提供商标识（有序）。
func SupportedSTT() []string {
	return []string{providers.ProviderHuggingFace, providers.ProviderWhisperServer}
}

// SupportedTTS 返回受支持的文本转语音提供商标识（有序）。
func SupportedTTS() []string {
	return []string{providers.ProviderAllTalk, providers.ProviderElevenLabs}
}

// SupportedVision 返回受支持的视觉推理提供商标识。
func SupportedVision() []string {
	return []string{providers.ProviderOpenAI}
}

// Suite 聚合三个能力适配器，供根门面一次性装配。
// 因凭证缺失而跳过的能力为 nil。
type Suite struct {
	STT    media.Transcriber
	TTS    media.Synthesizer
	Vision media.Vision
}

// NewSuite 依据顶层配置构建全部能力适配器。缺失凭证的能力记录告警后留空，
// 不阻塞其余能力；标识拼写错误（NOT_SUPPORTED）则整体失败。
func NewSuite(cfg config.Config, clock bridge.Clock, logger *zap.Logger) (*Suite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	flog := logger.Named("factory")

	suite := &Suite{}

	stt, err := NewTranscriber(sttAdapterConfig(cfg.STT), clock, logger)
	switch {
	case err == nil:
		suite.STT = stt
	case media.IsCode(err, media.ErrConfiguration):
		flog.Warn("skipping stt capability: initialization failed", zap.Error(err))
	default:
		return nil, fmt.Errorf("build stt adapter: %w", err)
	}

	tts, err := NewSynthesizer(ttsAdapterConfig(cfg.TTS), clock, logger)
	switch {
	case err == nil:
		suite.TTS = tts
	case media.IsCode(err, media.ErrConfiguration):
		flog.Warn("skipping tts capability: initialization failed", zap.Error(err))
	default:
		return nil, fmt.Errorf("build tts adapter: %w", err)
	}

	vision, err := NewVision(visionAdapterConfig(cfg.Vision), clock, logger)
	switch {
	case err == nil:
		suite.Vision = vision
	case media.IsCode(err, media.ErrConfiguration):
		flog.Warn("skipping vision capability: initialization failed", zap.Error(err))
	default:
		return nil, fmt.Errorf("build vision adapter: %w", err)
	}

	return suite, nil
}

func sttAdapterConfig(c config.STTConfig) providers.STTConfig {
	return providers.STTConfig{
		Provider:          c.Provider,
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		Model:             c.Model,
		Language:          c.Language,
		Timeout:           c.Timeout,
		PollInterval:      c.PollInterval,
		RequestsPerSecond: c.RequestsPerSecond,
		CacheEnabled:      c.CacheEnabled,
		CacheSize:         c.CacheSize,
	}
}

func ttsAdapterConfig(c config.TTSConfig) providers.TTSConfig {
	return providers.TTSConfig{
		Provider:          c.Provider,
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		Model:             c.Model,
		Voice:             c.Voice,
		Language:          c.Language,
		Speed:             c.Speed,
		OutputFileName:    c.OutputFileName,
		Autoplay:          c.Autoplay,
		AutoplayVolume:    c.AutoplayVolume,
		Timeout:           c.Timeout,
		PollInterval:      c.PollInterval,
		RequestsPerSecond: c.RequestsPerSecond,
		CacheEnabled:      c.CacheEnabled,
		CacheSize:         c.CacheSize,
	}
}

func visionAdapterConfig(c config.VisionConfig) providers.VisionConfig {
	return providers.VisionConfig{
		Provider:          c.Provider,
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		Model:             c.Model,
		MaxTokens:         c.MaxTokens,
		ImageDimension:    c.ImageDimension,
		ImageQuality:      c.ImageQuality,
		Timeout:           c.Timeout,
		PollInterval:      c.PollInterval,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}
