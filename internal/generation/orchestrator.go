package generation

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"adforge/internal/campaign"
	"adforge/internal/logging"
	"adforge/internal/provider"
)

// AssetError records one asset that failed generation.
type AssetError struct {
	AssetID string
	Err     error
}

// Config holds orchestrator configuration.
type Config struct {
	// MaxConcurrent caps in-flight provider calls. Assets are processed in
	// sequential batches of this size; a batch never starts until the
	// previous one has fully settled, including its slowest member.
	MaxConcurrent int

	// Agent configures the per-asset specialist agents.
	Agent AgentConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 3,
		Agent:         DefaultAgentConfig(),
	}
}

// Orchestrator fans a brief's asset list out to specialist agents under a
// concurrency cap, aggregating successes and failures.
type Orchestrator struct {
	client provider.ImageClient
	config Config
}

// NewOrchestrator creates a parallel generation orchestrator. The provider
// client is shared by all agents; it must be safe for concurrent use.
func NewOrchestrator(client provider.ImageClient, config Config) *Orchestrator {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 3
	}
	return &Orchestrator{client: client, config: config}
}

// GenerateAll generates every asset in the brief and never fails as a whole:
// per-asset failures are recorded and counted, not propagated.
//
// Results are returned in completion order, not brief order - correlate by
// AssetID, never by index. On context cancellation, in-flight calls finish
// but no new batch starts; unlaunched assets are recorded as failed.
func (o *Orchestrator) GenerateAll(ctx context.Context, brief *campaign.CreativeBrief, onProgress campaign.ProgressFunc) ([]campaign.GeneratedAsset, []AssetError) {
	specs := brief.Assets
	total := len(specs)

	logging.Generation("Generating %d assets with max %d concurrent", total, o.config.MaxConcurrent)

	var (
		mu       sync.Mutex
		results  []campaign.GeneratedAsset
		failures []AssetError

		completed atomic.Int64
		failed    atomic.Int64
		inFlight  atomic.Int64
	)

	report := func() {
		if onProgress == nil {
			return
		}
		onProgress(campaign.Progress{
			Total:      total,
			Completed:  int(completed.Load()),
			InProgress: int(inFlight.Load()),
			Failed:     int(failed.Load()),
		})
	}

	for start := 0; start < total; start += o.config.MaxConcurrent {
		if ctx.Err() != nil {
			// Stop launching new batches; everything not yet started is a
			// failure attributable to the cancellation.
			mu.Lock()
			for _, spec := range specs[start:] {
				failures = append(failures, AssetError{AssetID: spec.ID, Err: ctx.Err()})
				failed.Add(1)
			}
			mu.Unlock()
			report()
			break
		}

		end := start + o.config.MaxConcurrent
		if end > total {
			end = total
		}
		batch := specs[start:end]

		var g errgroup.Group
		for _, spec := range batch {
			spec := spec
			inFlight.Add(1)
			g.Go(func() error {
				agent := NewAgent(o.client, o.config.Agent)
				asset, err := agent.Generate(ctx, spec, brief)

				// Settle the counters before reporting so the snapshot never
				// counts this task as still in flight.
				inFlight.Add(-1)
				if err != nil {
					logging.Get(logging.CategoryGeneration).Error("Failed to generate %s: %v", spec.ID, err)
					mu.Lock()
					failures = append(failures, AssetError{AssetID: spec.ID, Err: err})
					mu.Unlock()
					failed.Add(1)
					report()
					return nil
				}

				mu.Lock()
				results = append(results, *asset)
				mu.Unlock()
				completed.Add(1)
				report()
				return nil
			})
		}

		// Wait for the whole batch to settle before starting the next one.
		_ = g.Wait()
	}

	logging.Generation("Generation complete. Success: %d, Failed: %d", len(results), len(failures))

	return results, failures
}
