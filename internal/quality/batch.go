package quality

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"adforge/internal/campaign"
	"adforge/internal/logging"
)

// BatchProgressFunc observes batch validation progress as a running
// (completed, total) count reported after each settled batch.
type BatchProgressFunc func(completed, total int)

// BatchValidator runs the quality agent over many assets under a
// concurrency cap.
type BatchValidator struct {
	agent     *Agent
	batchSize int
}

// NewBatchValidator creates a batch validator. batchSize caps concurrent
// validations; values < 1 fall back to the default of 5.
func NewBatchValidator(batchSize int) *BatchValidator {
	return NewBatchValidatorWithThresholds(batchSize, DefaultThresholds())
}

// NewBatchValidatorWithThresholds creates a batch validator whose agent
// applies the given brief-less default quality bars.
func NewBatchValidatorWithThresholds(batchSize int, t Thresholds) *BatchValidator {
	if batchSize < 1 {
		batchSize = 5
	}
	return &BatchValidator{
		agent:     NewAgentWithThresholds(t),
		batchSize: batchSize,
	}
}

// ValidateAll validates every asset and yields exactly one result per input:
// the agent itself never fails, so the batch never partially fails. Batches
// run sequentially; validations within a batch run concurrently. Results
// are returned in input order.
func (b *BatchValidator) ValidateAll(ctx context.Context, assets []campaign.GeneratedAsset, brief *campaign.CreativeBrief, onProgress BatchProgressFunc) []campaign.QualityCheckResult {
	total := len(assets)
	logging.Quality("Validating %d assets (batch size %d)", total, b.batchSize)

	results := make([]campaign.QualityCheckResult, total)
	var mu sync.Mutex
	completed := 0

	for start := 0; start < total; start += b.batchSize {
		end := start + b.batchSize
		if end > total {
			end = total
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = b.agent.ValidateAsset(ctx, &assets[i], brief)
				return nil
			})
		}
		_ = g.Wait()

		mu.Lock()
		completed += end - start
		done := completed
		mu.Unlock()

		if onProgress != nil {
			onProgress(done, total)
		}
	}

	passed, failed := 0, 0
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	logging.Quality("Validation complete. Passed: %d, Failed: %d", passed, failed)

	return results
}
