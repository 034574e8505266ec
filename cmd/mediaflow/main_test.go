package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/mediaflow/config"
)

func TestInitLogger_LevelThreshold(t *testing.T) {
	tests := []struct {
		level       string
		debugActive bool
		warnActive  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"bogus", false, true}, // falls back to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := initLogger(config.LogConfig{Level: tt.level, Format: "json"})
			require.NotNil(t, logger)
			assert.Equal(t, tt.debugActive, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.warnActive, logger.Core().Enabled(zapcore.WarnLevel))
		})
	}
}

func TestInitLogger_EmptyOutputPathsFallBackToStdout(t *testing.T) {
	logger := initLogger(config.LogConfig{Level: "info", Format: "json"})
	require.NotNil(t, logger)
	// Logging must not panic with the fallback sink.
	logger.Info("fallback sink smoke check")
}

func TestInitLogger_ConsoleFormat(t *testing.T) {
	logger := initLogger(config.LogConfig{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stdout"},
	})
	require.NotNil(t, logger)
}
