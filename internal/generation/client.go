package generation

import (
	"context"

	"pixal/internal/config"
	"pixal/internal/services/llm"
)

// Completer sends one prompt pair and returns the model's JSON reply.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewDetectClient builds the Anthropic client used by detection.
func NewDetectClient(cfg *config.Config, opts ...llm.Option) *llm.Client {
	return llm.NewClient(llm.Config{
		Provider:       llm.ProviderAnthropic,
		APIKey:         cfg.Credentials.Get("CLAUDE_API_KEY"),
		BaseURL:        cfg.Detect.BaseURL,
		Model:          cfg.Detect.Model,
		MaxTokens:      cfg.Detect.MaxTokens,
		Temperature:    cfg.Detect.Temperature,
		TimeoutSeconds: cfg.Detect.TimeoutSeconds,
	}, opts...)
}

// NewCraftClient builds the OpenAI client used by crafting.
func NewCraftClient(cfg *config.Config, opts ...llm.Option) *llm.Client {
	return llm.NewClient(llm.Config{
		Provider:       llm.ProviderOpenAI,
		APIKey:         cfg.Credentials.Get("OPENAI_API_KEY"),
		BaseURL:        cfg.Craft.BaseURL,
		Model:          cfg.Craft.Model,
		Temperature:    cfg.Craft.Temperature,
		TimeoutSeconds: cfg.Craft.TimeoutSeconds,
	}, opts...)
}
