package oracle

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/steward/internal/anthropic"
	"github.com/MikeSquared-Agency/steward/internal/bedrock"
	"github.com/MikeSquared-Agency/steward/internal/gemini"
)

// Config selects and configures a text generation backend.
type Config struct {
	Provider string // "gemini", "anthropic", "bedrock"

	GeminiAPIKey string
	GeminiModel  string

	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicTokens int // max tokens per completion; zero keeps the client default

	BedrockRegion string
	BedrockModel  string
}

// New creates the configured backend.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch cfg.Provider {
	case "gemini", "google", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for the gemini provider")
		}
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel), nil

	case "anthropic", "claude":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, anthropic.WithMaxTokens(cfg.AnthropicTokens)), nil

	case "bedrock", "aws":
		c, err := bedrock.NewClient(ctx, cfg.BedrockRegion, cfg.BedrockModel)
		if err != nil {
			return nil, fmt.Errorf("bedrock client: %w", err)
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: gemini, anthropic, bedrock)", cfg.Provider)
	}
}
