// Package conductor builds creative briefs. It analyzes brand identity and
// inspiration material through an LLM, synthesizes both into a structured
// brief, and expands the campaign's deliverables into per-asset specs. Every
// LLM step degrades to a documented default on failure, so brief construction
// itself never fails.
package conductor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"adforge/internal/campaign"
	"adforge/internal/logging"
)

// Conductor produces a creative brief from campaign inputs.
type Conductor interface {
	CreateBrief(ctx context.Context, input campaign.BriefInput, brandRecords, inspirationRecords []campaign.AssetRecord) (*campaign.CreativeBrief, error)
}

// brandAnalysis is the LLM's read of the brand identity.
type brandAnalysis struct {
	Colors struct {
		Primary   []string `json:"primary"`
		Secondary []string `json:"secondary"`
		Accent    []string `json:"accent"`
	} `json:"colors"`
	Typography struct {
		Headings []string `json:"headings"`
		Body     []string `json:"body"`
	} `json:"typography"`
	LogoUsage struct {
		Preferred  string   `json:"preferred"`
		Variations []string `json:"variations"`
		Placement  string   `json:"placement"`
	} `json:"logo_usage"`
	Voice struct {
		Tone     []string `json:"tone"`
		Keywords []string `json:"keywords"`
		Avoid    []string `json:"avoid"`
	} `json:"voice"`
}

// inspirationAnalysis is the LLM's read of the inspiration material.
type inspirationAnalysis struct {
	VisualStyle struct {
		Keywords    []string `json:"keywords"`
		Mood        []string `json:"mood"`
		Composition []string `json:"composition"`
	} `json:"visual_style"`
	ColorTrends struct {
		Dominant []string `json:"dominant"`
		Accents  []string `json:"accents"`
		Palette  string   `json:"palette"`
	} `json:"color_trends"`
	Patterns struct {
		Layout   []string `json:"layout"`
		Elements []string `json:"elements"`
	} `json:"patterns"`
}

// Agent is the LLM-backed Conductor implementation.
//
// Responsibilities:
//  1. Analyze brand assets (logos, colors, typography, guidelines)
//  2. Analyze inspiration (photos, style refs, mood boards)
//  3. Synthesize into a detailed creative brief
//  4. Generate specifications for each individual asset
type Agent struct {
	client LLMClient
}

// NewAgent creates a conductor agent around the given LLM client.
func NewAgent(client LLMClient) *Agent {
	return &Agent{client: client}
}

// CreateBrief runs the three conductor steps. A context error aborts the run;
// any other LLM or parse failure falls back to defaults so a flaky model
// cannot block a campaign.
func (a *Agent) CreateBrief(ctx context.Context, input campaign.BriefInput, brandRecords, inspirationRecords []campaign.AssetRecord) (*campaign.CreativeBrief, error) {
	logging.Conductor("Starting brief creation for campaign: %s", input.CampaignName)

	brand := a.analyzeBrandAssets(ctx, input.BrandAssets, brandRecords)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inspiration := a.analyzeInspiration(ctx, input.Inspiration, inspirationRecords)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	brief := a.synthesizeBrief(ctx, input, brand, inspiration)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	brief.Assets = generateAssetSpecs(input, brief)

	logging.Conductor("Brief creation complete: %d asset specs", len(brief.Assets))
	return brief, nil
}

// analyzeBrandAssets extracts the visual identity from brand assets.
func (a *Agent) analyzeBrandAssets(ctx context.Context, refs campaign.BrandAssetRefs, records []campaign.AssetRecord) brandAnalysis {
	logging.Conductor("Analyzing %d brand assets", len(records))

	text, err := a.client.Complete(ctx, brandAnalystSystemPrompt, buildBrandAnalysisPrompt(refs, records))
	if err != nil {
		logging.Get(logging.CategoryConductor).Error("Brand analysis failed: %v", err)
		return defaultBrandAnalysis()
	}

	raw, ok := extractJSON(text)
	if !ok {
		logging.Get(logging.CategoryConductor).Warn("Brand analysis returned no JSON, using defaults")
		return defaultBrandAnalysis()
	}

	var analysis brandAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		logging.Get(logging.CategoryConductor).Warn("Brand analysis JSON unparseable: %v", err)
		return defaultBrandAnalysis()
	}
	return analysis
}

// analyzeInspiration extracts visual themes from inspiration material.
func (a *Agent) analyzeInspiration(ctx context.Context, refs campaign.InspirationRefs, records []campaign.AssetRecord) inspirationAnalysis {
	logging.Conductor("Analyzing %d inspiration assets", len(records))

	text, err := a.client.Complete(ctx, inspirationSystemPrompt, buildInspirationAnalysisPrompt(refs, records))
	if err != nil {
		logging.Get(logging.CategoryConductor).Error("Inspiration analysis failed: %v", err)
		return defaultInspirationAnalysis()
	}

	raw, ok := extractJSON(text)
	if !ok {
		logging.Get(logging.CategoryConductor).Warn("Inspiration analysis returned no JSON, using defaults")
		return defaultInspirationAnalysis()
	}

	var analysis inspirationAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		logging.Get(logging.CategoryConductor).Warn("Inspiration analysis JSON unparseable: %v", err)
		return defaultInspirationAnalysis()
	}
	return analysis
}

// synthesizeBrief merges both analyses with the campaign input into a brief.
func (a *Agent) synthesizeBrief(ctx context.Context, input campaign.BriefInput, brand brandAnalysis, inspiration inspirationAnalysis) *campaign.CreativeBrief {
	logging.Conductor("Synthesizing creative brief")

	text, err := a.client.Complete(ctx, briefSynthesisSystemPrompt, buildBriefSynthesisPrompt(input, brand, inspiration))
	if err != nil {
		logging.Get(logging.CategoryConductor).Error("Brief synthesis failed: %v", err)
		return defaultBrief()
	}

	raw, ok := extractJSON(text)
	if !ok {
		logging.Get(logging.CategoryConductor).Warn("Brief synthesis returned no JSON, using defaults")
		return defaultBrief()
	}

	var brief campaign.CreativeBrief
	if err := json.Unmarshal([]byte(raw), &brief); err != nil {
		logging.Get(logging.CategoryConductor).Warn("Brief synthesis JSON unparseable: %v", err)
		return defaultBrief()
	}
	return &brief
}

// generateAssetSpecs expands the campaign deliverables into one spec per
// requested unit, numbered "asset-N" in deliverable order.
func generateAssetSpecs(input campaign.BriefInput, brief *campaign.CreativeBrief) []campaign.AssetSpec {
	var specs []campaign.AssetSpec

	n := 0
	for _, d := range input.Requirements.Deliverables {
		quantity := d.Quantity
		if quantity < 1 {
			quantity = 1
		}

		role := d.Role
		if role == "" {
			role = inferAssetRole(d.Name)
		}

		for v := 1; v <= quantity; v++ {
			n++
			spec := campaign.AssetSpec{
				ID:       fmt.Sprintf("asset-%d", n),
				Type:     "photo",
				Purpose:  d.Name,
				Role:     role,
				Platform: d.Platform,
				Specs: campaign.SpecDetails{
					Ratio:         inferAspectRatio(d.Name),
					Composition:   fallback(brief.VisualDirection.Composition.Style, "Professional"),
					Mood:          fallback(brief.VisualDirection.Mood.Primary, "Engaging"),
					ColorEmphasis: fallback(brief.VisualDirection.ColorPalette.Primary, "#000000"),
				},
				Prompt: generateAssetPrompt(d.Name, brief),
			}
			if quantity > 1 {
				spec.Variant = fmt.Sprintf("%d", v)
			}
			specs = append(specs, spec)
		}
	}

	return specs
}

// generateAssetPrompt builds the base image prompt for one deliverable. The
// generation agent layers brief-level enhancements on top of this.
func generateAssetPrompt(deliverable string, brief *campaign.CreativeBrief) string {
	vd := brief.VisualDirection
	return fmt.Sprintf(
		"Professional product photography for %s, %s mood, %s composition, %s lighting, color palette: %s, %s aesthetic, high quality, commercial photography",
		deliverable,
		fallback(vd.Mood.Primary, "engaging"),
		fallback(vd.Composition.Style, "clean modern"),
		fallback(vd.Composition.Lighting, "natural bright"),
		fallback(vd.ColorPalette.Primary, "brand colors"),
		fallback(brief.CopyDirection.Tone, "professional"),
	)
}

// inferAssetRole maps a deliverable name onto a known asset role.
func inferAssetRole(deliverable string) string {
	lower := strings.ToLower(deliverable)
	switch {
	case strings.Contains(lower, "hero"):
		return "hero"
	case strings.Contains(lower, "product"):
		return "product_shot"
	case strings.Contains(lower, "lifestyle"):
		return "lifestyle"
	case strings.Contains(lower, "teaser"):
		return "teaser"
	case strings.Contains(lower, "email"):
		return "email_header"
	case strings.Contains(lower, "web"), strings.Contains(lower, "banner"):
		return "web_banner"
	case strings.Contains(lower, "story"), strings.Contains(lower, "stories"):
		return "story"
	}
	return "custom"
}

// inferAspectRatio maps a deliverable name onto an output aspect ratio. The
// default is the Instagram feed ratio.
func inferAspectRatio(deliverable string) string {
	lower := strings.ToLower(deliverable)
	switch {
	case strings.Contains(lower, "story"), strings.Contains(lower, "stories"):
		return "9:16"
	case strings.Contains(lower, "feed"):
		return "4:5"
	case strings.Contains(lower, "square"):
		return "1:1"
	case strings.Contains(lower, "banner"):
		return "16:9"
	}
	return "4:5"
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// defaultBrandAnalysis is the fallback when brand analysis cannot run.
func defaultBrandAnalysis() brandAnalysis {
	var b brandAnalysis
	b.Colors.Primary = []string{"#FF6B9D"}
	b.Colors.Secondary = []string{"#000000"}
	b.Colors.Accent = []string{"#FFFFFF"}
	b.Typography.Headings = []string{"Sans-serif"}
	b.Typography.Body = []string{"Sans-serif"}
	b.LogoUsage.Preferred = "Primary logo"
	b.LogoUsage.Variations = []string{"Icon", "Full"}
	b.LogoUsage.Placement = "Top or bottom corner"
	b.Voice.Tone = []string{"Professional", "Friendly"}
	b.Voice.Keywords = []string{"Quality", "Style"}
	b.Voice.Avoid = []string{"Cheap", "Sale"}
	return b
}

// defaultInspirationAnalysis is the fallback when inspiration analysis
// cannot run.
func defaultInspirationAnalysis() inspirationAnalysis {
	var i inspirationAnalysis
	i.VisualStyle.Keywords = []string{"Modern", "Clean"}
	i.VisualStyle.Mood = []string{"Professional", "Aspirational"}
	i.VisualStyle.Composition = []string{"Balanced", "Minimal"}
	i.ColorTrends.Dominant = []string{"#000000"}
	i.ColorTrends.Accents = []string{"#FFFFFF"}
	i.ColorTrends.Palette = "Minimalist monochrome"
	i.Patterns.Layout = []string{"Grid", "Centered"}
	i.Patterns.Elements = []string{"Product focus", "Clean background"}
	return i
}

// defaultBrief is the fallback brief used when synthesis cannot run. Asset
// specs are still generated from the deliverables afterward.
func defaultBrief() *campaign.CreativeBrief {
	return &campaign.CreativeBrief{
		VisualDirection: campaign.VisualDirection{
			ColorPalette: campaign.ColorPalette{
				Primary:   "#FF6B9D",
				Secondary: "#000000",
				Accent:    "#FFFFFF",
				Rationale: "Classic brand colors",
			},
			Composition: campaign.Composition{
				Style:    "Clean and modern",
				Layout:   "Rule of thirds",
				Lighting: "Natural and bright",
			},
			Mood: campaign.Mood{
				Primary:   "Professional",
				Secondary: "Approachable",
				Avoid:     []string{"Too casual", "Too formal"},
			},
		},
		CopyDirection: campaign.CopyDirection{
			Tone:     "Professional and friendly",
			Voice:    "First-person, conversational",
			Keywords: []string{"Quality", "Style", "Confidence"},
			Avoid:    []string{"Cheap", "Discount"},
		},
		TechnicalSpecs: campaign.TechnicalSpecs{
			Resolution: "1024x1024 minimum",
			Format:     "png",
			ColorSpace: "sRGB",
			SafeZones:  "10% margin on all sides",
		},
		BrandCompliance: &campaign.BrandCompliance{
			RequiredElements:   []string{"Logo", "Brand colors"},
			ProhibitedElements: []string{"Competitor products"},
			QualityThresholds: campaign.QualityThresholds{
				BrandAlignment: campaign.DefaultBrandAlignmentThreshold,
				VisualQuality:  campaign.DefaultVisualQualityThreshold,
				Accessibility:  "WCAG AA",
			},
		},
	}
}
