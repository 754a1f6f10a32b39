package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromEnv(t *testing.T) {
	t.Run("unset falls back", func(t *testing.T) {
		t.Setenv("TERMSEARCH_LOG", "")
		assert.Equal(t, "info", LevelFromEnv("info"))
	})

	t.Run("valid level wins", func(t *testing.T) {
		t.Setenv("TERMSEARCH_LOG", "debug")
		assert.Equal(t, "debug", LevelFromEnv("info"))
	})

	t.Run("invalid level falls back", func(t *testing.T) {
		t.Setenv("TERMSEARCH_LOG", "shout")
		assert.Equal(t, "warn", LevelFromEnv("warn"))
	})
}

func TestInit_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "termsearch.log")

	require.NoError(t, Init(&Config{
		Level:     "debug",
		Output:    logPath,
		Timestamp: true,
	}))

	GetLogger().History().Debug().Str("path", "x").Msg("test event")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "test event")
	assert.Contains(t, string(content), `"component":"history"`)
}

func TestInit_RejectsInvalidLevel(t *testing.T) {
	assert.Error(t, Init(&Config{Level: "nope", Output: "stderr"}))
}
