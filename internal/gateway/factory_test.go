package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orthocode/internal/config"
	"orthocode/internal/gateway"
	_ "orthocode/internal/gateway/claude"
	_ "orthocode/internal/gateway/openai"
)

func TestNew_UnknownProvider(t *testing.T) {
	_, err := gateway.New(&config.GatewayConfig{Provider: "mystery", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown gateway provider")
}

func TestNew_MissingKey(t *testing.T) {
	_, err := gateway.New(&config.GatewayConfig{Provider: "claude", APIKey: "  "})
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestNew_RegisteredProviders(t *testing.T) {
	for _, name := range []string{"claude", "openai"} {
		gw, err := gateway.New(&config.GatewayConfig{Provider: name, APIKey: "test-key"})
		require.NoError(t, err)
		assert.Equal(t, name, gw.Provider())
	}
	assert.Contains(t, gateway.Providers(), "claude")
	assert.Contains(t, gateway.Providers(), "openai")
}
