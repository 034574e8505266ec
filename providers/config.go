package providers

import (
	"net/http"
	"time"
)

// 受支持的提供商标识。
const (
	ProviderWhisperServer = "whisper-server"
	ProviderHuggingFace   = "huggingface"
	ProviderAllTalk       = "alltalk"
	ProviderElevenLabs    = "elevenlabs"
	ProviderOpenAI        = "openai"
)

// STTConfig 语音转文本适配器配置
type STTConfig struct {
	Provider          string        `json:"provider" yaml:"provider"`
	BaseURL           string        `json:"base_url" yaml:"base_url"`
	APIKey            string        `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model             string        `json:"model,omitempty" yaml:"model,omitempty"`
	Language          string        `json:"language,omitempty" yaml:"language,omitempty"`
	Timeout           time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PollInterval      time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	RequestsPerSecond float64       `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	CacheEnabled      bool          `json:"cache_enabled,omitempty" yaml:"cache_enabled,omitempty"`
	CacheSize         int           `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`

	// Transport 仅供测试注入，生产路径使用安全默认传输。
	Transport http.RoundTripper `json:"-" yaml:"-"`
}

// TTSConfig 文本转语音适配器配置
type TTSConfig struct {
	Provider          string        `json:"provider" yaml:"provider"`
	BaseURL           string        `json:"base_url" yaml:"base_url"`
	APIKey            string        `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model             string        `json:"model,omitempty" yaml:"model,omitempty"`
	Voice             string        `json:"voice,omitempty" yaml:"voice,omitempty"`
	Language          string        `json:"language,omitempty" yaml:"language,omitempty"`
	Speed             float64       `json:"speed,omitempty" yaml:"speed,omitempty"`
	OutputFileName    string        `json:"output_file_name,omitempty" yaml:"output_file_name,omitempty"`
	Autoplay          bool          `json:"autoplay,omitempty" yaml:"autoplay,omitempty"`
	AutoplayVolume    float64       `json:"autoplay_volume,omitempty" yaml:"autoplay_volume,omitempty"`
	Timeout           time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PollInterval      time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	RequestsPerSecond float64       `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	CacheEnabled      bool          `json:"cache_enabled,omitempty" yaml:"cache_enabled,omitempty"`
	CacheSize         int           `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`

	// Transport 仅供测试注入，生产路径使用安全默认传输。
	Transport http.RoundTripper `json:"-" yaml:"-"`
}

// VisionConfig 视觉推理适配器配置
type VisionConfig struct {
	Provider          string        `json:"provider" yaml:"provider"`
	BaseURL           string        `json:"base_url" yaml:"base_url"`
	APIKey            string        `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model             string        `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens         int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	ImageDimension    int           `json:"image_dimension,omitempty" yaml:"image_dimension,omitempty"`
	ImageQuality      int           `json:"image_quality,omitempty" yaml:"image_quality,omitempty"`
	Timeout           time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PollInterval      time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	RequestsPerSecond float64       `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`

	// Transport 仅供测试注入，生产路径使用安全默认传输。
	Transport http.RoundTripper `json:"-" yaml:"-"`
}

// DefaultSTTConfig 返回本地 Whisper 服务的默认 STT 配置。
func DefaultSTTConfig() STTConfig {
	return STTConfig{
		Provider: ProviderWhisperServer,
		BaseURL:  "http://localhost:8080",
		Language: "en",
		Timeout:  30 * time.Second,
	}
}

// DefaultTTSConfig 返回本地 AllTalk 服务的默认 TTS 配置。
func DefaultTTSConfig() TTSConfig {
	return TTSConfig{
		Provider:       ProviderAllTalk,
		BaseURL:        "http://localhost:7851",
		Voice:          "female_01.wav",
		Language:       "en",
		Speed:          1.0,
		OutputFileName: "mediaflow_out",
		AutoplayVolume: 0.8,
		Timeout:        30 * time.Second,
		CacheEnabled:   true,
		CacheSize:      16,
	}
}

// DefaultVisionConfig 返回 OpenAI 兼容端点的默认视觉配置。
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{
		Provider:  ProviderOpenAI,
		BaseURL:   "https://api.openai.com",
		Model:     "gpt-4o-mini",
		MaxTokens: 500,
		Timeout:   60 * time.Second,
	}
}
