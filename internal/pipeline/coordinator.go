// Package pipeline coordinates a full campaign generation run: brief
// construction, parallel asset generation, quality control, and persistence,
// with the campaign's lifecycle status persisted at every stage boundary.
package pipeline

import (
	"context"
	"fmt"

	"adforge/internal/campaign"
	"adforge/internal/conductor"
	"adforge/internal/generation"
	"adforge/internal/logging"
	"adforge/internal/quality"
)

// Stores bundles the persistence contracts the coordinator needs.
type Stores struct {
	Campaigns campaign.CampaignStore
	Assets    campaign.AssetStore
	Results   campaign.ResultWriter
}

// Coordinator drives one campaign through the generation pipeline.
//
// Status progression on the happy path:
//
//	draft -> generating_brief -> brief_ready -> generating_assets
//	      -> quality_check -> review
//
// A fatal error at any stage rolls the campaign back to draft so the run can
// be retried from the start. Per-asset generation failures are not fatal.
type Coordinator struct {
	stores       Stores
	conductor    conductor.Conductor
	orchestrator *generation.Orchestrator
	validator    *quality.BatchValidator

	onGenProgress campaign.ProgressFunc
	onQCProgress  quality.BatchProgressFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithGenerationProgress installs a generation progress observer.
func WithGenerationProgress(fn campaign.ProgressFunc) Option {
	return func(c *Coordinator) { c.onGenProgress = fn }
}

// WithQualityProgress installs a quality-control progress observer.
func WithQualityProgress(fn quality.BatchProgressFunc) Option {
	return func(c *Coordinator) { c.onQCProgress = fn }
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(stores Stores, cond conductor.Conductor, orch *generation.Orchestrator, validator *quality.BatchValidator, opts ...Option) *Coordinator {
	c := &Coordinator{
		stores:       stores,
		conductor:    cond,
		orchestrator: orch,
		validator:    validator,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the full pipeline for one campaign and returns the run
// summary. The returned counts always satisfy
// GeneratedAssets + failed generations == len(brief.Assets).
func (c *Coordinator) Run(ctx context.Context, campaignID string) (*campaign.RunResult, error) {
	logging.Pipeline("Starting generation run for campaign %s", campaignID)
	timer := logging.StartTimer(logging.CategoryPipeline, "Run")
	defer timer.StopWithInfo()

	camp, err := c.stores.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	result, err := c.run(ctx, camp)
	if err != nil {
		// Roll back to draft so the run can be retried. Best effort: the
		// original error wins over a rollback failure.
		logging.Get(logging.CategoryPipeline).Error("Run failed for %s, rolling back to draft: %v", campaignID, err)
		if rbErr := c.stores.Campaigns.UpdateStatus(context.WithoutCancel(ctx), campaignID, campaign.StatusDraft); rbErr != nil {
			logging.Get(logging.CategoryPipeline).Error("Rollback failed for %s: %v", campaignID, rbErr)
		}
		return nil, err
	}
	return result, nil
}

func (c *Coordinator) run(ctx context.Context, camp *campaign.Campaign) (*campaign.RunResult, error) {
	// Stage 1: brief construction.
	brief, err := c.generateBrief(ctx, camp)
	if err != nil {
		return nil, err
	}

	// Stage 2: parallel asset generation.
	if err := c.stores.Campaigns.UpdateStatus(ctx, camp.ID, campaign.StatusGeneratingAssets); err != nil {
		return nil, fmt.Errorf("failed to enter generation stage: %w", err)
	}
	assets, failures := c.orchestrator.GenerateAll(ctx, brief, c.onGenProgress)

	meta := rollupMetadata(brief, assets, failures)
	if err := c.stores.Campaigns.UpdateGenerationMetadata(ctx, camp.ID, meta); err != nil {
		return nil, fmt.Errorf("failed to persist generation metadata: %w", err)
	}

	// Per-asset failures are never fatal: even a fully failed generation
	// stage proceeds through quality control and lands in review, where the
	// metadata tells the story.

	// Stage 3: quality control over the successful generations.
	if err := c.stores.Campaigns.UpdateStatus(ctx, camp.ID, campaign.StatusQualityCheck); err != nil {
		return nil, fmt.Errorf("failed to enter quality stage: %w", err)
	}
	verdicts := c.validator.ValidateAll(ctx, assets, brief, c.onQCProgress)

	// Stage 4: persist results and hand off to review.
	pairs := make([]campaign.ResultPair, 0, len(assets))
	passed, failedQC := 0, 0
	for i, asset := range assets {
		spec := brief.AssetByID(asset.AssetID)
		if spec == nil {
			return nil, fmt.Errorf("generated asset %s has no spec in brief", asset.AssetID)
		}
		if verdicts[i].Passed {
			passed++
		} else {
			failedQC++
		}
		pairs = append(pairs, campaign.ResultPair{Spec: *spec, Asset: asset, Quality: verdicts[i]})
	}
	if err := c.stores.Results.WriteResults(ctx, camp.ID, pairs); err != nil {
		return nil, fmt.Errorf("failed to persist results: %w", err)
	}

	if err := c.stores.Campaigns.UpdateStatus(ctx, camp.ID, campaign.StatusReview); err != nil {
		return nil, fmt.Errorf("failed to enter review stage: %w", err)
	}

	logging.Pipeline("Run complete for %s: %d generated, %d passed QC, %d failed QC",
		camp.ID, len(assets), passed, failedQC)

	return &campaign.RunResult{
		CampaignID:      camp.ID,
		Status:          campaign.StatusReview,
		GeneratedAssets: len(assets),
		PassedQC:        passed,
		FailedQC:        failedQC,
	}, nil
}

// generateBrief runs the conductor stage and persists the resulting brief.
// Each run synthesizes a fresh brief; a stale one from an aborted run is
// overwritten, never reused.
func (c *Coordinator) generateBrief(ctx context.Context, camp *campaign.Campaign) (*campaign.CreativeBrief, error) {
	if err := c.stores.Campaigns.UpdateStatus(ctx, camp.ID, campaign.StatusGeneratingBrief); err != nil {
		return nil, fmt.Errorf("failed to enter brief stage: %w", err)
	}

	brandRecords, err := c.stores.Assets.GetAssets(ctx, camp.BrandAssets.All())
	if err != nil {
		return nil, fmt.Errorf("failed to load brand assets: %w", err)
	}
	inspirationRecords, err := c.stores.Assets.GetAssets(ctx, camp.Inspiration.All())
	if err != nil {
		return nil, fmt.Errorf("failed to load inspiration assets: %w", err)
	}

	input := campaign.BriefInput{
		CampaignName: camp.Name,
		Objective:    camp.Objective,
		Platforms:    platformNames(camp.Requirements),
		BrandAssets:  camp.BrandAssets,
		Inspiration:  camp.Inspiration,
		Requirements: camp.Requirements,
	}

	brief, err := c.conductor.CreateBrief(ctx, input, brandRecords, inspirationRecords)
	if err != nil {
		return nil, fmt.Errorf("brief construction failed: %w", err)
	}
	if len(brief.Assets) == 0 {
		return nil, fmt.Errorf("brief contains no asset specs; campaign needs at least one deliverable")
	}

	if err := c.stores.Campaigns.UpdateBrief(ctx, camp.ID, brief, campaign.StatusBriefReady); err != nil {
		return nil, fmt.Errorf("failed to persist brief: %w", err)
	}

	return brief, nil
}

// rollupMetadata computes the campaign-level generation rollup. Cost is the
// sum across assets; time is the max, since assets generate in parallel.
func rollupMetadata(brief *campaign.CreativeBrief, assets []campaign.GeneratedAsset, failures []generation.AssetError) *campaign.GenerationMetadata {
	// Iterations stays 0 on a first pass; refinement runs would bump it.
	meta := &campaign.GenerationMetadata{
		TotalAssets:     len(brief.Assets),
		GeneratedAssets: len(assets),
		FailedAssets:    len(failures),
	}
	for _, a := range assets {
		meta.TotalCostCents += a.Metadata.CostCents
		if a.Metadata.GenerationTimeMS > meta.TotalTimeMS {
			meta.TotalTimeMS = a.Metadata.GenerationTimeMS
		}
	}
	return meta
}

func platformNames(req campaign.Requirements) []string {
	var names []string
	for _, p := range req.Platforms {
		names = append(names, p.Name)
	}
	return names
}
