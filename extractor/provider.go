package extractor

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/raushankrgupta/product-page-extractor/config"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// NewFromConfig builds the Extractor for the configured provider. Call Close
// when done.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Extractor, error) {
	verifier := NewImageVerifier(nil, cfg.Verify)

	switch cfg.LLM.Provider {
	case ProviderGemini, "":
		client, err := NewGeminiClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, err
		}
		return New(client, verifier, Options{
			PriceModel:    cfg.Gemini.PriceModel,
			ImageModel:    cfg.Gemini.ImageModel,
			MaxInputChars: cfg.LLM.MaxInputChars,
		}), nil
	case ProviderAnthropic:
		client, err := NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.MaxTokens)
		if err != nil {
			return nil, err
		}
		return New(client, verifier, Options{
			PriceModel:    cfg.Anthropic.PriceModel,
			ImageModel:    cfg.Anthropic.ImageModel,
			MaxInputChars: cfg.LLM.MaxInputChars,
		}), nil
	default:
		return nil, eris.Errorf("extractor: unknown llm provider %q", cfg.LLM.Provider)
	}
}

func defaultVerifyConfig() config.VerifyConfig {
	return config.VerifyConfig{Timeout: DefaultVerifyTimeout}
}
