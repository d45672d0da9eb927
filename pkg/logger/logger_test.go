package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level       string
		development bool
		want        zapcore.Level
	}{
		{level: "", want: zapcore.InfoLevel},
		{level: "debug", development: true, want: zapcore.DebugLevel},
		{level: "warn", want: zapcore.WarnLevel},
		{level: "error", want: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, level, err := New(tt.level, tt.development)
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, tt.want, level.Level())
			assert.True(t, log.Core().Enabled(tt.want))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New("loud", false)
	assert.Error(t, err)
}

func TestNew_AtomicLevelIsLive(t *testing.T) {
	log, level, err := New("error", false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	level.SetLevel(zapcore.InfoLevel)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
