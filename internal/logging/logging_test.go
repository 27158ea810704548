package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jask/horaculo/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "horaculo.log")
	logger, err := New(config.LogConfig{Path: path, Level: "info"}, false)
	require.NoError(t, err)

	logger.Info("search started")
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "search started")
	require.NotContains(t, string(raw), "hidden at info level")
}

func TestNewWithoutPathIsNop(t *testing.T) {
	logger, err := New(config.LogConfig{}, true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("goes nowhere")
}
