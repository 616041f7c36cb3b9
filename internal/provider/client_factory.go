package provider

import (
	"context"
	"fmt"

	"adforge/internal/config"
)

// NewFromConfig constructs the ImageClient named by the provider config.
func NewFromConfig(ctx context.Context, cfg config.ProviderConfig) (ImageClient, error) {
	costs := CostTable{
		SquareCents: cfg.SquareCostCents,
		WideCents:   cfg.WideCostCents,
	}

	switch cfg.Name {
	case "openai":
		oc := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			oc.Model = cfg.Model
		}
		oc.Timeout = config.ParseTimeout(cfg.Timeout, oc.Timeout)
		oc.Costs = costs
		return NewOpenAIClientWithConfig(oc), nil

	case "gemini":
		gc := DefaultGeminiConfig(cfg.APIKey)
		if cfg.Model != "" {
			gc.Model = cfg.Model
		}
		gc.Costs = costs
		return NewGeminiClient(ctx, gc)

	default:
		return nil, fmt.Errorf("unknown image provider: %q", cfg.Name)
	}
}
