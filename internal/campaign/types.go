// Package campaign defines the campaign asset generation domain model:
// campaigns, creative briefs, asset specs, generated assets, and quality
// control results. The pipeline packages (generation, quality, pipeline)
// operate over these types; the store package persists them.
package campaign

import (
	"time"
)

// Status represents the campaign lifecycle state.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusGeneratingBrief  Status = "generating_brief"
	StatusBriefReady       Status = "brief_ready"
	StatusGeneratingAssets Status = "generating_assets"
	StatusQualityCheck     Status = "quality_check"
	StatusRefining         Status = "refining"
	StatusReview           Status = "review"
	StatusApproved         Status = "approved"
	StatusScheduled        Status = "scheduled"
	StatusLive             Status = "live"
	StatusCompleted        Status = "completed"
	StatusArchived         Status = "archived"
)

// AssetStatus represents the state of one generated asset.
type AssetStatus string

const (
	AssetGenerated    AssetStatus = "generated"
	AssetQualityCheck AssetStatus = "quality_check"
	AssetFailed       AssetStatus = "failed"
	AssetApproved     AssetStatus = "approved"
)

// Campaign is a marketing initiative. It is created externally (CMS) and
// mutated only by the pipeline coordinator during a run.
type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Objective string `json:"objective"` // Free-text campaign objective
	Status    Status `json:"status"`

	// User-selected inputs (asset references, not asset contents)
	BrandAssets  BrandAssetRefs  `json:"brand_assets"`
	Inspiration  InspirationRefs `json:"inspiration"`
	Requirements Requirements    `json:"requirements"`

	// Pipeline outputs, nil until the corresponding stage completes
	CreativeBrief      *CreativeBrief      `json:"creative_brief,omitempty"`
	GenerationMetadata *GenerationMetadata `json:"generation_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BrandAssetRefs references brand identity assets by id.
type BrandAssetRefs struct {
	Logos      []string `json:"logos,omitempty" yaml:"logos"`
	Colors     []string `json:"colors,omitempty" yaml:"colors"`
	Typography []string `json:"typography,omitempty" yaml:"typography"`
	Guidelines []string `json:"guidelines,omitempty" yaml:"guidelines"`
}

// All returns every referenced asset id, in declaration order.
func (b BrandAssetRefs) All() []string {
	var ids []string
	ids = append(ids, b.Logos...)
	ids = append(ids, b.Colors...)
	ids = append(ids, b.Typography...)
	ids = append(ids, b.Guidelines...)
	return ids
}

// InspirationRefs references inspiration material by id.
type InspirationRefs struct {
	Photos          []string `json:"photos,omitempty" yaml:"photos"`
	StyleReferences []string `json:"style_references,omitempty" yaml:"style_references"`
	MoodBoards      []string `json:"mood_boards,omitempty" yaml:"mood_boards"`
	Competitors     []string `json:"competitors,omitempty" yaml:"competitors"`
}

// All returns every referenced asset id, in declaration order.
func (i InspirationRefs) All() []string {
	var ids []string
	ids = append(ids, i.Photos...)
	ids = append(ids, i.StyleReferences...)
	ids = append(ids, i.Competitors...)
	return ids
}

// PlatformSpec names a target platform and the post types wanted on it.
type PlatformSpec struct {
	Name  string   `json:"name" yaml:"name"`
	Types []string `json:"types" yaml:"types"` // e.g. ["feed-post", "story"]
}

// Deliverable is one requested output of the campaign.
type Deliverable struct {
	Name     string `json:"name" yaml:"name"`
	Quantity int    `json:"quantity" yaml:"quantity"`
	Role     string `json:"role" yaml:"role"`
	Platform string `json:"platform,omitempty" yaml:"platform"`
}

// Constraint is a user-supplied requirement constraint.
type Constraint struct {
	Type        string `json:"type" yaml:"type"` // visual, copy, technical, budget, timeline
	Description string `json:"description" yaml:"description"`
	Priority    string `json:"priority" yaml:"priority"` // required, preferred, optional
}

// Requirements captures campaign-level requirement constraints.
type Requirements struct {
	Platforms      []PlatformSpec `json:"platforms,omitempty" yaml:"platforms"`
	Deliverables   []Deliverable  `json:"deliverables,omitempty" yaml:"deliverables"`
	Constraints    []Constraint   `json:"constraints,omitempty" yaml:"constraints"`
	BudgetCents    int            `json:"budget_cents,omitempty" yaml:"budget_cents"`
	TargetAudience string         `json:"target_audience,omitempty" yaml:"target_audience"`
}

// BriefInput is the narrow payload handed to the brief-construction
// capability (the Conductor).
type BriefInput struct {
	CampaignName string          `json:"campaign_name" yaml:"campaign_name"`
	Objective    string          `json:"objective" yaml:"objective"`
	Platforms    []string        `json:"platforms" yaml:"platforms"`
	BrandAssets  BrandAssetRefs  `json:"brand_assets" yaml:"brand_assets"`
	Inspiration  InspirationRefs `json:"inspiration" yaml:"inspiration"`
	Requirements Requirements    `json:"requirements" yaml:"requirements"`
}

// SpecDetails carries per-asset generation hints. Ratio is the only field
// the pipeline itself interprets (output size selection).
type SpecDetails struct {
	Ratio            string   `json:"ratio,omitempty"`
	Composition      string   `json:"composition,omitempty"`
	Mood             string   `json:"mood,omitempty"`
	ColorEmphasis    string   `json:"color_emphasis,omitempty"`
	TextPlacement    string   `json:"text_placement,omitempty"`
	RequiredElements []string `json:"required_elements,omitempty"`
}

// AssetSpec is one unit of work inside a brief. Immutable once the brief
// is produced.
type AssetSpec struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"` // photo, video, graphic
	Purpose  string      `json:"purpose"`
	Role     string      `json:"role"` // e.g. hero, thumbnail
	Platform string      `json:"platform,omitempty"`
	Variant  string      `json:"variant,omitempty"`
	Specs    SpecDetails `json:"specs"`
	Prompt   string      `json:"prompt,omitempty"` // Author-supplied base prompt
}

// ColorPalette is the brief's color direction.
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// Composition is the brief's composition direction.
type Composition struct {
	Style    string `json:"style"`
	Layout   string `json:"layout"`
	Lighting string `json:"lighting"`
}

// Mood is the brief's mood direction.
type Mood struct {
	Primary   string   `json:"primary"`
	Secondary string   `json:"secondary,omitempty"`
	Avoid     []string `json:"avoid,omitempty"`
}

// VisualDirection is the visual block of a creative brief.
type VisualDirection struct {
	ColorPalette ColorPalette `json:"color_palette"`
	Composition  Composition  `json:"composition"`
	Mood         Mood         `json:"mood"`
}

// CopyDirection is the copywriting block of a creative brief.
type CopyDirection struct {
	Tone     string   `json:"tone"`
	Voice    string   `json:"voice"`
	Keywords []string `json:"keywords,omitempty"`
	Avoid    []string `json:"avoid,omitempty"`
}

// TechnicalSpecs constrains the generated files.
type TechnicalSpecs struct {
	Resolution       string `json:"resolution"`  // e.g. "1024x1024"
	Format           string `json:"format"`      // e.g. "png"
	ColorSpace       string `json:"color_space"` // e.g. "sRGB"
	SafeZones        string `json:"safe_zones,omitempty"`
	MaxFileSizeBytes int64  `json:"max_file_size_bytes,omitempty"`
}

// QualityThresholds are the brief's per-check quality bars.
type QualityThresholds struct {
	BrandAlignment float64 `json:"brand_alignment"`
	VisualQuality  float64 `json:"visual_quality"`
	Accessibility  string  `json:"accessibility,omitempty"` // e.g. "WCAG AA"
}

// BrandCompliance lists required/prohibited visual elements and quality bars.
type BrandCompliance struct {
	RequiredElements   []string          `json:"required_elements,omitempty"`
	ProhibitedElements []string          `json:"prohibited_elements,omitempty"`
	QualityThresholds  QualityThresholds `json:"quality_thresholds"`
}

// Default quality thresholds, used when a brief carries none.
const (
	DefaultBrandAlignmentThreshold = 0.85
	DefaultVisualQualityThreshold  = 0.90
)

// CreativeBrief is the output of the brief stage. Immutable for the lifetime
// of a pipeline run; regenerating a brief creates a new object.
type CreativeBrief struct {
	VisualDirection VisualDirection  `json:"visual_direction"`
	CopyDirection   CopyDirection    `json:"copy_direction"`
	TechnicalSpecs  TechnicalSpecs   `json:"technical_specs"`
	BrandCompliance *BrandCompliance `json:"brand_compliance,omitempty"`
	Assets          []AssetSpec      `json:"assets"`
}

// AssetByID returns the spec with the given id, or nil.
func (b *CreativeBrief) AssetByID(id string) *AssetSpec {
	for i := range b.Assets {
		if b.Assets[i].ID == id {
			return &b.Assets[i]
		}
	}
	return nil
}

// GenerationInfo is the per-asset generation metadata.
type GenerationInfo struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"` // Final crafted prompt as submitted

	// CostCents is the size-based cost estimate in minor currency units.
	CostCents int `json:"cost_cents"`

	// GenerationTimeMS is wall-clock time for this asset, in milliseconds.
	GenerationTimeMS int64 `json:"generation_time_ms"`

	// Attempt is the 1-indexed attempt that finally succeeded.
	Attempt int `json:"attempt"`

	// Output dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GeneratedAsset is one successful generation result. Created once per
// successful agent run and never mutated afterward.
type GeneratedAsset struct {
	AssetID  string         `json:"asset_id"` // == source AssetSpec.ID
	URL      string         `json:"url"`      // Opaque provider output reference
	Role     string         `json:"role"`
	Platform string         `json:"platform,omitempty"`
	Status   AssetStatus    `json:"status"`
	Metadata GenerationInfo `json:"metadata"`
}

// QualityCheck is one named check's outcome.
type QualityCheck struct {
	Name    string         `json:"name"`
	Passed  bool           `json:"passed"`
	Score   float64        `json:"score"` // In [0,1]
	Details map[string]any `json:"details,omitempty"`
}

// QualityCheckResult aggregates all checks for one asset.
type QualityCheckResult struct {
	AssetID string         `json:"asset_id"`
	Passed  bool           `json:"passed"` // AND of all checks
	Score   float64        `json:"score"`  // Mean of check scores
	Checks  []QualityCheck `json:"checks"`

	// Feedback holds human-readable, actionable strings, one per failing
	// check factor, or a single confirmation when everything passed.
	Feedback []string `json:"feedback"`

	// RequiresRefinement is true when the asset should be regenerated or
	// manually reviewed: not passed, or passed but scored below the brief's
	// brand-alignment threshold.
	RequiresRefinement bool `json:"requires_refinement"`
}

// GenerationMetadata is the campaign-level rollup persisted after the
// generation stage.
type GenerationMetadata struct {
	TotalAssets     int `json:"total_assets"`
	GeneratedAssets int `json:"generated_assets"`
	FailedAssets    int `json:"failed_assets"`

	// RefinedAssets is always 0 on the first pass; the refinement loop is a
	// future iteration.
	RefinedAssets int `json:"refined_assets"`

	TotalCostCents int `json:"total_cost_cents"`

	// TotalTimeMS is the max over per-asset generation times, not the sum,
	// since generation runs in parallel.
	TotalTimeMS int64 `json:"total_time_ms"`

	Iterations int `json:"iterations"`
}

// RunResult is the summary returned by a full pipeline run.
type RunResult struct {
	CampaignID      string `json:"campaign_id"`
	Status          Status `json:"status"`
	GeneratedAssets int    `json:"generated_assets"`
	PassedQC        int    `json:"passed_qc"`
	FailedQC        int    `json:"failed_qc"`
}

// Progress is a best-effort counter snapshot reported after each settled
// generation task. Snapshots racing concurrent completions are not
// guaranteed to arrive in monotonic order.
type Progress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Failed     int `json:"failed"`
}

// ProgressFunc observes pipeline progress. Implementations must not block
// and must not mutate pipeline state.
type ProgressFunc func(Progress)
