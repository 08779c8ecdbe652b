package extractor

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// AnthropicClient runs structured extraction on Claude. The Messages API has
// no JSON mode, so the schema travels in the system prompt and the reply is
// unwrapped from any code fence.
type AnthropicClient struct {
	client    sdk.Client
	maxTokens int64
}

// NewAnthropicClient creates an Anthropic-backed StructuredClient
func NewAnthropicClient(apiKey string, maxTokens int64, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, eris.New("anthropic: ANTHROPIC_API_KEY is not set")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicClient{
		client:    sdk.NewClient(opts...),
		maxTokens: maxTokens,
	}, nil
}

func (c *AnthropicClient) ExtractJSON(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: anthropicSystemPrompt(req)}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Input)),
		},
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, eris.New("anthropic: no text in response")
	}

	return &StructuredResponse{
		Text:  stripCodeFence(sb.String()),
		Model: string(msg.Model),
		Usage: TokenUsage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
			TotalTokens:      msg.Usage.InputTokens + msg.Usage.OutputTokens,
		},
	}, nil
}

func anthropicSystemPrompt(req StructuredRequest) string {
	if req.Schema == nil {
		return req.Instruction
	}
	return req.Instruction + "\n\nJSON schema:\n" + req.Schema.String() +
		"\n\nRespond with a single JSON object and nothing else."
}

// stripCodeFence removes a ```json ... ``` wrapper if the model added one
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
