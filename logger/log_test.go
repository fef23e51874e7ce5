package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildLevelFromEnvString(t *testing.T) {
	l := build("warn", "")
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestBuildDefaultsToDebug(t *testing.T) {
	for _, levelStr := range []string{"", "not-a-level"} {
		l := build(levelStr, "json")
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "level %q", levelStr)
	}
}
