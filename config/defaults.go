// =============================================================================
// 📦 MediaFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		STT:       DefaultSTTConfig(),
		TTS:       DefaultTTSConfig(),
		Vision:    DefaultVisionConfig(),
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		OutputPaths:  []string{"stdout"},
		EnableCaller: true,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "mediaflow",
		SampleRate:   0.1,
	}
}

// DefaultSTTConfig 返回默认语音转文本配置
func DefaultSTTConfig() STTConfig {
	return STTConfig{
		Provider:     "whisper-server",
		BaseURL:      "http://localhost:8080",
		Language:     "en",
		Timeout:      30 * time.Second,
		PollInterval: 50 * time.Millisecond,
		CacheEnabled: true,
		CacheSize:    16,
	}
}

// DefaultTTSConfig 返回默认文本转语音配置
func DefaultTTSConfig() TTSConfig {
	return TTSConfig{
		Provider:       "alltalk",
		BaseURL:        "http://localhost:7851",
		Voice:          "female_01.wav",
		Language:       "en",
		Speed:          1.0,
		OutputFileName: "mediaflow_out",
		Autoplay:       false,
		AutoplayVolume: 0.8,
		Timeout:        30 * time.Second,
		PollInterval:   50 * time.Millisecond,
		CacheEnabled:   true,
		CacheSize:      16,
	}
}

// DefaultVisionConfig 返回默认视觉推理配置
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{
		Provider:       "openai",
		BaseURL:        "https://api.openai.com",
		Model:          "gpt-4o-mini",
		MaxTokens:      500,
		ImageDimension: 512,
		ImageQuality:   85,
		Timeout:        60 * time.Second,
		PollInterval:   50 * time.Millisecond,
	}
}
