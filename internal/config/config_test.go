package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4534/api", cfg.APIBaseURL)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, ".shopctl/session.json", cfg.StateFile)
	assert.Empty(t, cfg.StateSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://shop.example.com/api")
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("STATE_FILE", "/tmp/session.json")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/session.json", cfg.StateFile)
}
