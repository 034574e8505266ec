// =============================================================================
// 📦 MediaFlow 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("mediaflow.yaml").
//	    WithEnvPrefix("MEDIAFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/mediaflow/media"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 MediaFlow 的完整配置结构
type Config struct {
	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// STT 语音转文本配置
	STT STTConfig `yaml:"stt" env:"STT"`

	// TTS 文本转语音配置
	TTS TTSConfig `yaml:"tts" env:"TTS"`

	// Vision 视觉推理配置
	Vision VisionConfig `yaml:"vision" env:"VISION"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// STTConfig 语音转文本配置
type STTConfig struct {
	// 提供商标识: whisper-server, huggingface
	Provider string `yaml:"provider" env:"PROVIDER"`
	// 服务基础地址
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 访问凭证（托管端点必需）
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 模型标识（托管端点使用）
	Model string `yaml:"model" env:"MODEL"`
	// 默认语言码
	Language string `yaml:"language" env:"LANGUAGE"`
	// 单次操作墙钟超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 生命周期轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// 客户端限流（0 表示关闭）
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	// 是否启用转写缓存
	CacheEnabled bool `yaml:"cache_enabled" env:"CACHE_ENABLED"`
	// 缓存容量（条目数）
	CacheSize int `yaml:"cache_size" env:"CACHE_SIZE"`
}

// TTSConfig 文本转语音配置
type TTSConfig struct {
	// 提供商标识: alltalk, elevenlabs
	Provider string `yaml:"provider" env:"PROVIDER"`
	// 服务基础地址
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 访问凭证（托管端点必需）
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 模型标识（托管端点使用）
	Model string `yaml:"model" env:"MODEL"`
	// 默认音色
	Voice string `yaml:"voice" env:"VOICE"`
	// 默认语言码
	Language string `yaml:"language" env:"LANGUAGE"`
	// 初始语速倍率，运行期可经 SetSpeed 调整
	Speed float64 `yaml:"speed" env:"SPEED"`
	// 生成文件名（本地后端使用）
	OutputFileName string `yaml:"output_file_name" env:"OUTPUT_FILE_NAME"`
	// 服务端自动播放（本地后端使用）
	Autoplay bool `yaml:"autoplay" env:"AUTOPLAY"`
	// 自动播放音量
	AutoplayVolume float64 `yaml:"autoplay_volume" env:"AUTOPLAY_VOLUME"`
	// 单次操作墙钟超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 生命周期轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// 客户端限流（0 表示关闭）
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	// 是否启用音频片段缓存
	CacheEnabled bool `yaml:"cache_enabled" env:"CACHE_ENABLED"`
	// 缓存容量（条目数）
	CacheSize int `yaml:"cache_size" env:"CACHE_SIZE"`
}

// VisionConfig 视觉推理配置
type VisionConfig struct {
	// 提供商标识: openai
	Provider string `yaml:"provider" env:"PROVIDER"`
	// 服务基础地址
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 访问凭证（必需）
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 模型标识
	Model string `yaml:"model" env:"MODEL"`
	// 应答 Token 上限
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// 图片归一化边长（像素）
	ImageDimension int `yaml:"image_dimension" env:"IMAGE_DIMENSION"`
	// JPEG 质量 (1-100)
	ImageQuality int `yaml:"image_quality" env:"IMAGE_QUALITY"`
	// 单次操作墙钟超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 生命周期轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// 客户端限流（0 表示关闭）
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "MEDIAFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	// 1. 从默认值开始
	cfg := DefaultConfig()

	// 2. 如果指定了配置文件，从文件加载
	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// 3. 从环境变量覆盖
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// 4. 运行验证器
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// 获取 env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		// 如果是结构体，递归处理
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		// 获取环境变量值
		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		// 设置字段值
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv 仅从环境变量加载配置
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry sample_rate must be within [0, 1]")
	}

	if c.STT.CacheEnabled && c.STT.CacheSize <= 0 {
		errs = append(errs, "stt cache_size must be positive when cache is enabled")
	}
	if c.TTS.CacheEnabled && c.TTS.CacheSize <= 0 {
		errs = append(errs, "tts cache_size must be positive when cache is enabled")
	}
	if c.TTS.Speed != 0 && (c.TTS.Speed < media.MinSpeed || c.TTS.Speed > media.MaxSpeed) {
		errs = append(errs, fmt.Sprintf("tts speed must be within [%.2f, %.2f]", media.MinSpeed, media.MaxSpeed))
	}
	if c.Vision.ImageQuality < 0 || c.Vision.ImageQuality > 100 {
		errs = append(errs, "vision image_quality must be within [0, 100]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
