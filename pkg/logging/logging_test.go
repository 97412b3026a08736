package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/bomkit/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zap.DebugLevel},
		{"", zap.InfoLevel},
		{"info", zap.InfoLevel},
		{"warn", zap.WarnLevel},
		{"error", zap.ErrorLevel},
	}

	for _, tc := range testCases {
		got, err := ParseLevel(tc.input)
		require.NoError(t, err)
		if got != tc.expected {
			t.Errorf("Expected %q to parse as %s, got %s", tc.input, tc.expected, got)
		}
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = New(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
