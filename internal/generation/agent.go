// Package generation implements the specialist generation agents and the
// parallel orchestrator that fans a creative brief's asset list out to them.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"adforge/internal/campaign"
	"adforge/internal/logging"
	"adforge/internal/provider"
)

// AgentConfig holds configuration for a specialist agent.
type AgentConfig struct {
	// MaxAttempts per asset before the agent gives up (default 3).
	MaxAttempts int

	// BackoffBase doubles per attempt: attempt 1 waits base*2, then base*4,
	// base*8... (default 1s, giving 2s/4s/8s).
	BackoffBase time.Duration

	// BackoffMax caps the wait between attempts.
	BackoffMax time.Duration

	// CallTimeout bounds one provider call. Zero means rely on the
	// client's own timeout.
	CallTimeout time.Duration

	// MaxPromptLength is the provider's prompt cutoff.
	MaxPromptLength int
}

// DefaultAgentConfig returns sensible defaults matching the reference
// provider (DALL-E 3: 4000 char prompt limit, truncated at 3900).
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxAttempts:     3,
		BackoffBase:     1 * time.Second,
		BackoffMax:      5 * time.Minute,
		CallTimeout:     120 * time.Second,
		MaxPromptLength: 3900,
	}
}

// Agent turns one AssetSpec into one GeneratedAsset.
//
// Responsibilities:
//  1. Interpret the creative brief for this asset
//  2. Select the generation model
//  3. Craft the generation prompt
//  4. Generate with bounded retries
//  5. Return the asset with generation metadata
type Agent struct {
	client provider.ImageClient
	config AgentConfig
}

// NewAgent creates a specialist agent driving the given provider client.
func NewAgent(client provider.ImageClient, config AgentConfig) *Agent {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = 1 * time.Second
	}
	if config.BackoffMax <= 0 {
		config.BackoffMax = 5 * time.Minute
	}
	if config.MaxPromptLength <= 0 {
		config.MaxPromptLength = 3900
	}
	return &Agent{client: client, config: config}
}

// interpretation is the per-asset projection of the brief's visual direction.
type interpretation struct {
	style       string
	mood        string
	composition string
	colors      string
	lighting    string
}

// interpretBrief projects the brief's visual direction for this asset.
// Pure, no side effects.
func interpretBrief(brief *campaign.CreativeBrief) interpretation {
	return interpretation{
		style:       brief.VisualDirection.Composition.Style,
		mood:        brief.VisualDirection.Mood.Primary,
		composition: brief.VisualDirection.Composition.Layout,
		colors:      brief.VisualDirection.ColorPalette.Primary,
		lighting:    brief.VisualDirection.Composition.Lighting,
	}
}

// selectModel picks the generation model for this asset type.
// Current policy always uses the injected client's model; the indirection
// exists so routing can vary by role or asset type later.
func (a *Agent) selectModel(spec campaign.AssetSpec) string {
	return a.client.Model()
}

// craftPrompt builds the final generation prompt: the spec's own prompt (or
// its purpose as fallback) enhanced with the brief's direction in fixed
// order, then truncated to the provider's limit.
func (a *Agent) craftPrompt(spec campaign.AssetSpec, interp interpretation) string {
	prompt := spec.Prompt
	if prompt == "" {
		prompt = spec.Purpose
	}

	var enhancements []string
	if interp.composition != "" {
		enhancements = append(enhancements, interp.composition+" composition")
	}
	if interp.mood != "" {
		enhancements = append(enhancements, interp.mood+" mood")
	}
	if interp.lighting != "" {
		enhancements = append(enhancements, interp.lighting+" lighting")
	}
	if interp.style != "" {
		enhancements = append(enhancements, interp.style+" style")
	}
	if interp.colors != "" {
		enhancements = append(enhancements, "color palette featuring "+interp.colors)
	}
	enhancements = append(enhancements,
		"high quality professional photography",
		"commercial grade",
	)

	enhanced := prompt + ", " + strings.Join(enhancements, ", ")
	return truncate(enhanced, a.config.MaxPromptLength)
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

// Generate produces one GeneratedAsset from one AssetSpec, or fails once
// all attempts are exhausted. The only side effects are the outbound
// provider calls; persistence belongs to the coordinator.
func (a *Agent) Generate(ctx context.Context, spec campaign.AssetSpec, brief *campaign.CreativeBrief) (*campaign.GeneratedAsset, error) {
	logging.Generation("Generating asset %s: %s", spec.ID, spec.Purpose)
	start := time.Now()

	interp := interpretBrief(brief)
	model := a.selectModel(spec)
	prompt := a.craftPrompt(spec, interp)
	size := provider.SizeForRatio(spec.Specs.Ratio)

	result, attempt, err := a.generateWithRetry(ctx, prompt, size)
	if err != nil {
		return nil, err
	}

	width, height := size.Dimensions()
	return &campaign.GeneratedAsset{
		AssetID:  spec.ID,
		URL:      result.URL,
		Role:     spec.Role,
		Platform: spec.Platform,
		Status:   campaign.AssetGenerated,
		Metadata: campaign.GenerationInfo{
			Model:            model,
			Prompt:           prompt,
			CostCents:        result.CostCents,
			GenerationTimeMS: time.Since(start).Milliseconds(),
			Attempt:          attempt,
			Width:            width,
			Height:           height,
		},
	}, nil
}

// generateWithRetry drives the provider call with exponential backoff.
// Attempts are strictly sequential; backoff waits are context-aware so a
// cancelled run stops promptly instead of sleeping out its schedule.
func (a *Agent) generateWithRetry(ctx context.Context, prompt string, size provider.Size) (*provider.ImageResult, int, error) {
	var lastErr error

	for attempt := 1; attempt <= a.config.MaxAttempts; attempt++ {
		logging.GenerationDebug("Attempt %d/%d (size=%s)", attempt, a.config.MaxAttempts, size)

		callCtx := ctx
		var cancel context.CancelFunc
		if a.config.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, a.config.CallTimeout)
		}
		result, err := a.client.GenerateImage(callCtx, provider.ImageRequest{
			Prompt:  prompt,
			Size:    size,
			Quality: "hd",
		})
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, attempt, nil
		}

		logging.Get(logging.CategoryGeneration).Warn("Attempt %d failed: %v", attempt, err)
		lastErr = err

		if ctx.Err() != nil {
			return nil, attempt, fmt.Errorf("generation cancelled on attempt %d: %w", attempt, ctx.Err())
		}

		if attempt < a.config.MaxAttempts {
			backoff := a.computeBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, attempt, fmt.Errorf("generation cancelled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return nil, a.config.MaxAttempts, fmt.Errorf("generation failed after %d attempts: %w", a.config.MaxAttempts, lastErr)
}

// computeBackoff returns base*2^attempt, capped at BackoffMax.
func (a *Agent) computeBackoff(attempt int) time.Duration {
	shift := attempt
	if shift > 10 {
		shift = 10
	}
	backoff := a.config.BackoffBase * time.Duration(1<<shift)
	if backoff > a.config.BackoffMax {
		backoff = a.config.BackoffMax
	}
	return backoff
}
