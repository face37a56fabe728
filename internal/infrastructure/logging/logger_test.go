package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, logger.Logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestFromLevel(t *testing.T) {
	logger := FromLevel("debug", false)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	fallback := FromLevel("nonsense", false)
	assert.NotNil(t, fallback)
	assert.False(t, fallback.Core().Enabled(zapcore.DebugLevel))
}

func TestNop(t *testing.T) {
	logger := NewNop()
	assert.NotPanics(t, func() {
		logger.Component("test").Info("discarded")
	})
}

func TestDevelopmentConfig(t *testing.T) {
	logger, err := New(DevelopmentConfig())
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
