package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/product-page-extractor/config"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("anthropic", func(t *testing.T) {
		cfg := &config.Config{
			LLM:       config.LLMConfig{Provider: ProviderAnthropic, MaxInputChars: 500},
			Anthropic: config.AnthropicConfig{APIKey: "k", PriceModel: "p", ImageModel: "i"},
		}
		e, err := NewFromConfig(context.Background(), cfg)
		require.NoError(t, err)
		defer e.Close()

		assert.IsType(t, &AnthropicClient{}, e.client)
		assert.Equal(t, Options{PriceModel: "p", ImageModel: "i", MaxInputChars: 500}, e.opts)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := NewFromConfig(context.Background(), &config.Config{LLM: config.LLMConfig{Provider: ProviderGemini}})
		assert.Error(t, err)

		_, err = NewFromConfig(context.Background(), &config.Config{LLM: config.LLMConfig{Provider: ProviderAnthropic}})
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewFromConfig(context.Background(), &config.Config{LLM: config.LLMConfig{Provider: "openai"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown llm provider "openai"`)
	})
}
