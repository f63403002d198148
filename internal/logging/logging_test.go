package logging

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithLevelCreatesLogFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("log location is only redirectable through XDG_STATE_HOME on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	logger := NewWithLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	logger.Warn().Msg("hello")

	path := filepath.Join(dir, "shortcut-tray", "shortcut-tray.log")
	assert.Equal(t, path, Path())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
