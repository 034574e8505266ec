// =============================================================================
// MediaFlow 主入口
// =============================================================================
// 一次性命令行入口，每次调用完成一个媒体转换操作
//
// 使用方法:
//
//	mediaflow transcribe --in speech.wav                # 音频转文本
//	mediaflow transcribe --in speech.wav --expect "hi"  # 附带置信度评分
//	mediaflow synthesize --text "hello" --out out.wav   # 文本转语音
//	mediaflow voices                                    # 列出可用音色
//	mediaflow describe --image cat.png --prompt "..."   # 图像描述
//	mediaflow version                                   # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/mediaflow"
	"github.com/BaSui01/mediaflow/config"
	"github.com/BaSui01/mediaflow/internal/telemetry"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/audio"
	"github.com/BaSui01/mediaflow/media/observability"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "transcribe":
		runTranscribe(os.Args[2:])
	case "synthesize":
		runSynthesize(os.Args[2:])
	case "voices":
		runVoices(os.Args[2:])
	case "describe":
		runDescribe(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

// =============================================================================
// 🔧 启动装配
// =============================================================================

// app 一次命令执行所需的运行时对象。
type app struct {
	services *mediaflow.Services
	logger   *zap.Logger
	otel     *telemetry.Providers
}

// setup 加载配置并装配日志、遥测与能力适配器。任何装配失败直接退出。
func setup(configPath string) *app {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	logger.Debug("starting mediaflow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	opts := []mediaflow.Option{mediaflow.WithLogger(logger)}
	if metrics, err := observability.NewMetrics(); err != nil {
		logger.Warn("failed to build metrics collector", zap.Error(err))
	} else {
		opts = append(opts, mediaflow.WithMetrics(metrics))
	}

	services, err := mediaflow.New(*cfg, opts...)
	if err != nil {
		logger.Error("failed to build services", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to build services: %v\n", err)
		os.Exit(1)
	}

	return &app{services: services, logger: logger, otel: otelProviders}
}

// shutdown 释放缓存载荷并冲刷遥测与日志缓冲。
func (a *app) shutdown() {
	a.services.Close()
	if a.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otel.Shutdown(ctx)
	}
	_ = a.logger.Sync()
}

// opContext 返回响应 Ctrl-C 的操作上下文。
func opContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// fail 打印操作错误并以状态码 1 退出。
func (a *app) fail(action string, err error) {
	a.logger.Error(action+" failed", zap.Error(err))
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", action, err)
	a.shutdown()
	os.Exit(1)
}

// =============================================================================
// 🎙️ transcribe 命令
// =============================================================================

func runTranscribe(args []string) {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	inPath := fs.String("in", "", "Input audio file (WAV)")
	expect := fs.String("expect", "", "Expected transcript for confidence scoring")
	language := fs.String("language", "", "Override the configured language code")
	fs.Parse(args)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "transcribe: --in is required")
		os.Exit(2)
	}

	a := setup(*configPath)
	defer a.shutdown()

	if a.services.STT == nil {
		fmt.Fprintln(os.Stderr, "Speech-to-text is not configured: hosted providers need stt.api_key")
		os.Exit(1)
	}

	ctx, stop := opContext()
	defer stop()

	if *expect == "" {
		text, err := audio.TranscribeFile(ctx, a.services.STT, *inPath, *language)
		if err != nil {
			a.fail("transcribe", err)
		}
		fmt.Println(text)
		return
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		a.fail("transcribe", err)
	}
	result, err := a.services.STT.TranscribeWithConfidence(ctx, &media.TranscribeRequest{
		Audio:        data,
		Language:     *language,
		ExpectedText: *expect,
	})
	if err != nil {
		a.fail("transcribe", err)
	}

	fmt.Println(result.Text)
	fmt.Printf("confidence: %.3f\n", result.Confidence)
	if accuracy, ok := result.Metadata["accuracy"]; ok {
		fmt.Printf("accuracy:   %s\n", accuracy)
	}
}

// =============================================================================
// 🔊 synthesize 命令
// =============================================================================

func runSynthesize(args []string) {
	fs := flag.NewFlagSet("synthesize", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	text := fs.String("text", "", "Text to synthesize")
	outPath := fs.String("out", "out.wav", "Output WAV file")
	voice := fs.String("voice", "", "Override the configured voice")
	speed := fs.Float64("speed", 0, "Playback speed multiplier (0 keeps the configured value)")
	fs.Parse(args)

	if *text == "" {
		fmt.Fprintln(os.Stderr, "synthesize: --text is required")
		os.Exit(2)
	}

	a := setup(*configPath)
	defer a.shutdown()

	if a.services.TTS == nil {
		fmt.Fprintln(os.Stderr, "Text-to-speech is not configured: hosted providers need tts.api_key")
		os.Exit(1)
	}

	if *speed != 0 {
		applied := a.services.TTS.SetSpeed(*speed)
		a.logger.Debug("speed applied", zap.Float64("requested", *speed), zap.Float64("applied", applied))
	}

	ctx, stop := opContext()
	defer stop()

	req := &media.SynthesizeRequest{Text: *text, Voice: *voice}
	if err := audio.SynthesizeToFile(ctx, a.services.TTS, req, *outPath); err != nil {
		a.fail("synthesize", err)
	}
	fmt.Printf("wrote %s\n", *outPath)
}

// =============================================================================
// 🗣️ voices 命令
// =============================================================================

func runVoices(args []string) {
	fs := flag.NewFlagSet("voices", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	a := setup(*configPath)
	defer a.shutdown()

	if a.services.TTS == nil {
		fmt.Fprintln(os.Stderr, "Text-to-speech is not configured: hosted providers need tts.api_key")
		os.Exit(1)
	}

	ctx, stop := opContext()
	defer stop()

	voices, err := a.services.TTS.ListVoices(ctx)
	if err != nil {
		a.fail("voices", err)
	}
	for _, v := range voices {
		fmt.Printf("%-32s %-24s %s\n", v.ID, v.Name, v.Language)
	}
}

// =============================================================================
// 🖼️ describe 命令
// =============================================================================

func runDescribe(args []string) {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	imagePath := fs.String("image", "", "Input image file (PNG or JPEG)")
	prompt := fs.String("prompt", "Describe this image.", "Prompt for the vision model")
	system := fs.String("system", "", "Optional system prompt")
	fs.Parse(args)

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "describe: --image is required")
		os.Exit(2)
	}

	a := setup(*configPath)
	defer a.shutdown()

	if a.services.Vision == nil {
		fmt.Fprintln(os.Stderr, "Vision is not configured: set vision.api_key")
		os.Exit(1)
	}

	img, err := os.ReadFile(*imagePath)
	if err != nil {
		a.fail("describe", err)
	}

	ctx, stop := opContext()
	defer stop()

	description, err := a.services.Vision.Generate(ctx, &media.VisionRequest{
		Prompt:       *prompt,
		Image:        img,
		SystemPrompt: *system,
	})
	if err != nil {
		a.fail("describe", err)
	}
	fmt.Println(description)
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("MediaFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`MediaFlow - Speech and Vision Conversion Pipeline

Usage:
  mediaflow <command> [options]

Commands:
  transcribe   Convert a WAV file to text
  synthesize   Convert text to a WAV file
  voices       List the voices the synthesizer offers
  describe     Describe an image with the vision model
  version      Show version information
  help         Show this help message

Common options:
  --config <path>   Path to configuration file (YAML)

Options for 'transcribe':
  --in <path>       Input audio file (required)
  --expect <text>   Expected transcript; adds confidence scoring
  --language <code> Override the configured language

Options for 'synthesize':
  --text <text>     Text to synthesize (required)
  --out <path>      Output WAV file (default out.wav)
  --voice <id>      Override the configured voice
  --speed <mult>    Playback speed multiplier

Options for 'describe':
  --image <path>    Input image file (required)
  --prompt <text>   Prompt for the vision model
  --system <text>   Optional system prompt

Examples:
  mediaflow transcribe --in speech.wav
  mediaflow transcribe --in speech.wav --expect "hello world"
  mediaflow synthesize --text "hello world" --out hello.wav
  mediaflow voices --config /etc/mediaflow/config.yaml
  mediaflow describe --image cat.png --prompt "What breed is this?"
  mediaflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	if zapConfig.Encoding != "console" {
		zapConfig.Encoding = "json"
	}
	if len(zapConfig.OutputPaths) == 0 {
		zapConfig.OutputPaths = []string{"stdout"}
	}

	buildOpts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.EnableCaller {
		buildOpts = append(buildOpts, zap.AddCaller())
	}

	logger, err := zapConfig.Build(buildOpts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
