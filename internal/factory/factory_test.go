package factory_test

import (
	"context"
	"testing"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/config"
	"fjacquet/finance-advisor/internal/factory"
	"fjacquet/finance-advisor/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviders_Disabled(t *testing.T) {
	cfg := config.Default()

	providers, err := factory.NewProviders(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.Completer)
	require.NotNil(t, providers.Embedder)
	assert.Equal(t, aiclient.ProviderLocal, providers.Embedder.Name())
}

func TestNewProviders_Ollama(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Enabled = true
	cfg.AI.Provider = config.ProviderOllama

	providers, err := factory.NewProviders(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, providers.Completer)
	assert.Equal(t, aiclient.ProviderOllama, providers.Completer.Name())
	assert.Equal(t, aiclient.ProviderOllama, providers.Embedder.Name())
	assert.Contains(t, providers.Checks, config.ProviderOllama)
	assert.Empty(t, providers.Closers)
}

func TestNewProviders_UnknownFallback(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Enabled = true
	cfg.AI.Provider = config.ProviderOllama
	cfg.AI.FallbackProvider = "openai"

	_, err := factory.NewProviders(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback provider")
}

func TestGetProvider(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name        string
		provider    factory.ProviderType
		apiKey      string
		expectError bool
		expectName  string
	}{
		{name: "ollama needs no key", provider: factory.Ollama, expectName: aiclient.ProviderOllama},
		{name: "gemini without key", provider: factory.Gemini, expectError: true},
		{name: "legacy gemini without key", provider: factory.GeminiLegacy, expectError: true},
		{name: "gemini with key", provider: factory.Gemini, apiKey: "test-key", expectName: aiclient.ProviderGemini},
		{name: "unknown", provider: factory.ProviderType("openai"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.AI.APIKey = tt.apiKey
			completer, embedder, err := factory.GetProvider(context.Background(), tt.provider, cfg, nil)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectName, completer.Name())
			assert.Equal(t, tt.expectName, embedder.Name())
		})
	}
}

func TestNewProviders_NilConfig(t *testing.T) {
	_, err := factory.NewProviders(context.Background(), nil, nil)
	assert.Error(t, err)
}
