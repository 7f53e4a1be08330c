package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, ProviderAuto, cfg.AI.Provider)
	assert.Equal(t, 20*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.OpenAI.Model)
	assert.Equal(t, 300, cfg.AI.OpenAI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.OpenAI.Temperature, 1e-6)
	assert.Nil(t, cfg.AI.Ark.MaxTokens)
	assert.False(t, cfg.Server.TrustProxy)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "60000")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("AI_TIMEOUT", "3s")
	t.Setenv("ARK_MAX_TOKENS", "512")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, 3*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.AI.OpenAI.Enabled())
	require.NotNil(t, cfg.AI.Ark.MaxTokens)
	assert.Equal(t, 512, *cfg.AI.Ark.MaxTokens)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port with spaces", "PORT", "80 80"},
		{"non-numeric window", "RATE_LIMIT_WINDOW_MS", "soon"},
		{"zero max requests", "RATE_LIMIT_MAX_REQUESTS", "0"},
		{"unknown provider", "AI_PROVIDER", "mystery"},
		{"bad timeout", "AI_TIMEOUT", "forever"},
		{"bad temperature", "OPENAI_TEMPERATURE", "warm"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("port: 4000\nallowed_origins:\n  - https://portfolio.example\nrate_limit_max_requests: 7\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://portfolio.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 7, cfg.RateLimit.MaxRequests)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestArkConfigEnabled(t *testing.T) {
	assert.False(t, ArkConfig{APIKey: "key"}.Enabled())
	assert.True(t, ArkConfig{APIKey: "key", Model: "ep-1"}.Enabled())
	assert.True(t, ArkConfig{AccessKey: "ak", SecretKey: "sk", Model: "ep-1"}.Enabled())
	assert.False(t, ArkConfig{AccessKey: "ak", Model: "ep-1"}.Enabled())
}
