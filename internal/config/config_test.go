package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/backend/internal/config"
)

// TestLoadConfig_Defaults verifies that the application starts with sane
// defaults when neither a .env file nor environment variables are present.
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.AppPort)
	assert.Equal(t, "http", cfg.AnswerProvider)
	assert.Equal(t, "./documents", cfg.UploadDir)
	assert.Equal(t, int64(10485760), cfg.MaxFileSize)
	assert.Equal(t, 5, cfg.RevealStepMs)
	assert.NotEmpty(t, cfg.WelcomeMessage)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

// TestLoadConfig_EnvOverride verifies that environment variables take
// precedence over the built-in defaults.
func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("ANSWER_PROVIDER", "openai")
	t.Setenv("REVEAL_STEP_MS", "25")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.AppPort)
	assert.Equal(t, "openai", cfg.AnswerProvider)
	assert.Equal(t, 25, cfg.RevealStepMs)
}
