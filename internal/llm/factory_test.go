package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/liftwise/internal/config"
)

func TestNewProviderOpenAI(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "openai",
			Providers: map[string]config.ProviderConfig{
				"openai": {Model: "gpt-4o-mini", APIKey: "k"},
			},
		},
	}

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.True(t, p.Available())
}

func TestNewProviderOllama(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "ollama",
			Providers: map[string]config.ProviderConfig{
				"ollama": {Endpoint: "http://127.0.0.1:11434"},
			},
		},
	}

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "anthropic",
			Providers: map[string]config.ProviderConfig{
				"anthropic": {},
			},
		},
	}

	_, err := NewProvider(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewProviderMissingConfig(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{DefaultProvider: "openai"},
	}

	_, err := NewProvider(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in configuration")
}

func TestNewProviderAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "openai",
			Providers:       map[string]config.ProviderConfig{"openai": {}},
		},
	}

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.True(t, p.Available())
}
