package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ANTHROPIC_API_KEY", "CLAUDE_MODEL",
		"ORTHOCODE_SERVER_PORT", "ORTHOCODE_GATEWAY_API_KEY", "ORTHOCODE_GATEWAY_MODEL",
		"ORTHOCODE_GATEWAY_PROVIDER", "ORTHOCODE_CORS_ALLOWED_ORIGINS",
		"ORTHOCODE_RATE_LIMIT_BACKEND", "ORTHOCODE_RATE_LIMIT_LIMIT", "ORTHOCODE_RATE_LIMIT_WINDOW",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "claude", cfg.Gateway.Provider)
	assert.Equal(t, 2000, cfg.Gateway.MaxTokens)
	assert.InDelta(t, 0.1, cfg.Gateway.Temperature, 1e-9)
	assert.False(t, cfg.Gateway.Configured())
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORTHOCODE_GATEWAY_PROVIDER", " OpenAI ")
	t.Setenv("ORTHOCODE_GATEWAY_API_KEY", "sk-test")
	t.Setenv("ORTHOCODE_RATE_LIMIT_LIMIT", "25")
	t.Setenv("ORTHOCODE_RATE_LIMIT_WINDOW", "30s")
	t.Setenv("ORTHOCODE_CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Gateway.Provider)
	assert.True(t, cfg.Gateway.Configured())
	assert.Equal(t, 25, cfg.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_LegacyAnthropicEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "  sk-ant-legacy  ")
	t.Setenv("CLAUDE_MODEL", "claude-3-5-sonnet-latest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-legacy", cfg.Gateway.APIKey)
	assert.Equal(t, "claude-3-5-sonnet-latest", cfg.Gateway.Model)
}

func TestLoad_LegacyAnthropicEnvIgnoredForOtherProviders(t *testing.T) {
	for _, provider := range []string{"openai", "gemini"} {
		t.Run(provider, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ORTHOCODE_GATEWAY_PROVIDER", provider)
			t.Setenv("ANTHROPIC_API_KEY", "sk-ant-legacy")
			t.Setenv("CLAUDE_MODEL", "claude-3-5-sonnet-latest")

			cfg, err := Load()
			require.NoError(t, err)

			assert.Equal(t, provider, cfg.Gateway.Provider)
			assert.Empty(t, cfg.Gateway.APIKey)
			assert.Empty(t, cfg.Gateway.Model)
			assert.False(t, cfg.Gateway.Configured())
		})
	}
}

func TestLoad_PrefixedKeyWinsOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORTHOCODE_GATEWAY_API_KEY", "sk-prefixed")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.Gateway.APIKey)
}

func TestLoad_PlatformPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestGatewayConfig_Timeout(t *testing.T) {
	assert.Equal(t, 120*time.Second, (&GatewayConfig{}).Timeout())
	assert.Equal(t, 30*time.Second, (&GatewayConfig{TimeoutSecs: 30}).Timeout())
}
