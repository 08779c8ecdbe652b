package extractor

import (
	"context"

	"go.uber.org/zap"
)

// StructuredClient is a schema-constrained extraction service.
// Implementations return the raw JSON text; callers own the parsing.
type StructuredClient interface {
	ExtractJSON(ctx context.Context, req StructuredRequest) (*StructuredResponse, error)
}

// StructuredRequest is one extraction call
type StructuredRequest struct {
	Model       string
	Instruction string
	Schema      *Schema
	Input       string
}

// StructuredResponse carries the model output and what it cost
type StructuredResponse struct {
	Text  string
	Model string
	Usage TokenUsage
}

// TokenUsage tracks token consumption of a call
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Log writes usage with structured fields
func (u TokenUsage) Log(model, phase string) {
	zap.L().Info("token usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("prompt_tokens", u.PromptTokens),
		zap.Int64("completion_tokens", u.CompletionTokens),
		zap.Int64("total_tokens", u.TotalTokens),
	)
}
