// Package quality scores generated assets against their creative brief.
// Four independent checks run per asset (brand alignment, visual quality,
// accessibility, technical specs); results aggregate into a pass/fail
// verdict, a mean score, and actionable feedback.
package quality

import (
	"context"
	"fmt"
	"sync"

	"adforge/internal/campaign"
	"adforge/internal/logging"
)

// Thresholds are the quality bars applied when a brief carries none of its
// own. A brief's explicit compliance thresholds always win.
type Thresholds struct {
	BrandAlignment float64
	VisualQuality  float64
}

// DefaultThresholds returns the stock quality bars.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BrandAlignment: campaign.DefaultBrandAlignmentThreshold,
		VisualQuality:  campaign.DefaultVisualQualityThreshold,
	}
}

// Agent validates one generated asset against the creative brief.
//
// Responsibilities:
//  1. Validate brand alignment
//  2. Check visual quality
//  3. Verify accessibility
//  4. Check technical specs
//  5. Generate actionable feedback
type Agent struct {
	thresholds Thresholds
}

// NewAgent creates a quality control agent with the stock thresholds.
func NewAgent() *Agent {
	return NewAgentWithThresholds(DefaultThresholds())
}

// NewAgentWithThresholds creates a quality control agent with configured
// brief-less default bars. Unset values fall back to the stock bars.
func NewAgentWithThresholds(t Thresholds) *Agent {
	if t.BrandAlignment <= 0 {
		t.BrandAlignment = campaign.DefaultBrandAlignmentThreshold
	}
	if t.VisualQuality <= 0 {
		t.VisualQuality = campaign.DefaultVisualQualityThreshold
	}
	return &Agent{thresholds: t}
}

// brandAlignmentBar resolves the effective brand-alignment bar: the brief's
// explicit threshold when set, the agent's default otherwise.
func (a *Agent) brandAlignmentBar(brief *campaign.CreativeBrief) float64 {
	if brief.BrandCompliance != nil && brief.BrandCompliance.QualityThresholds.BrandAlignment > 0 {
		return brief.BrandCompliance.QualityThresholds.BrandAlignment
	}
	return a.thresholds.BrandAlignment
}

// visualQualityBar resolves the effective visual-quality bar the same way.
func (a *Agent) visualQualityBar(brief *campaign.CreativeBrief) float64 {
	if brief.BrandCompliance != nil && brief.BrandCompliance.QualityThresholds.VisualQuality > 0 {
		return brief.BrandCompliance.QualityThresholds.VisualQuality
	}
	return a.thresholds.VisualQuality
}

// checkFunc is one independent quality check.
type checkFunc func(*campaign.GeneratedAsset, *campaign.CreativeBrief) campaign.QualityCheck

// ValidateAsset runs all checks concurrently and aggregates the results.
// It never fails: a failing check is a passed=false result, not an error.
func (a *Agent) ValidateAsset(ctx context.Context, asset *campaign.GeneratedAsset, brief *campaign.CreativeBrief) campaign.QualityCheckResult {
	logging.Quality("Validating asset: %s", asset.AssetID)

	visualBar := a.visualQualityBar(brief)

	// Fixed order keeps the check list stable for persistence and review.
	checkFuncs := []checkFunc{
		checkBrandAlignment,
		func(asset *campaign.GeneratedAsset, brief *campaign.CreativeBrief) campaign.QualityCheck {
			return checkVisualQuality(asset, brief, visualBar)
		},
		checkAccessibility,
		checkTechnicalSpecs,
	}

	checks := make([]campaign.QualityCheck, len(checkFuncs))
	var wg sync.WaitGroup
	for i, fn := range checkFuncs {
		i, fn := i, fn
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = fn(asset, brief)
		}()
	}
	wg.Wait()

	passed, score := aggregateChecks(checks)

	feedback := generateFeedback(checks)

	requiresRefinement := !passed || score < a.brandAlignmentBar(brief)

	logging.QualityDebug("Asset %s: passed=%v score=%.2f refine=%v", asset.AssetID, passed, score, requiresRefinement)

	return campaign.QualityCheckResult{
		AssetID:            asset.AssetID,
		Passed:             passed,
		Score:              score,
		Checks:             checks,
		Feedback:           feedback,
		RequiresRefinement: requiresRefinement,
	}
}

// aggregateChecks folds per-check verdicts into the overall result: passed
// is the AND of every check, score the mean rounded to two decimals.
func aggregateChecks(checks []campaign.QualityCheck) (passed bool, score float64) {
	passed = true
	var sum float64
	for _, c := range checks {
		passed = passed && c.Passed
		sum += c.Score
	}
	return passed, round2(sum / float64(len(checks)))
}

// generateFeedback turns failing checks into specific, actionable strings.
// A fully passing asset gets a single confirmation.
func generateFeedback(checks []campaign.QualityCheck) []string {
	var feedback []string

	for _, check := range checks {
		if check.Passed {
			continue
		}
		switch check.Name {
		case CheckBrandAlignment:
			if s, ok := detailFloat(check, "color_score"); ok && s < 0.8 {
				feedback = append(feedback, "Colors don't match brand palette - consider adjusting saturation or hue")
			}
			if s, ok := detailFloat(check, "mood_score"); ok && s < 0.8 {
				feedback = append(feedback, "Mood doesn't match target - review the brief's mood direction")
			}
			if s, ok := detailFloat(check, "composition_score"); ok && s < 0.8 {
				feedback = append(feedback, "Composition needs adjustment - review layout guidelines")
			}
			if found, ok := check.Details["prohibited_found"].([]string); ok && len(found) > 0 {
				feedback = append(feedback, fmt.Sprintf("Prohibited elements present: %v - regenerate without them", found))
			}
			if len(feedback) == 0 {
				feedback = append(feedback, "Brand alignment below threshold - review palette, mood, and required elements")
			}
		case CheckVisualQuality:
			feedback = append(feedback, "Visual quality below threshold - check resolution and sharpness")
		case CheckAccessibility:
			feedback = append(feedback, "Accessibility issues detected - review color contrast and text sizing")
		case CheckTechnicalSpecs:
			feedback = append(feedback, "Technical specifications not met - review format and resolution requirements")
		}
	}

	if len(feedback) == 0 {
		feedback = append(feedback, "All quality checks passed!")
	}

	return feedback
}
