package campaign

import (
	"context"
	"time"
)

// AssetRecord is a first-class asset row in the digital asset store.
// Brand/inspiration inputs are read as these; generated images are written
// back as new records.
type AssetRecord struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"` // Local path or provider URL
	FileType string `json:"file_type"` // image, video, document
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Caption  string `json:"caption,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CampaignAssetRecord links one generated asset to its campaign, carrying
// the generation and quality-control metadata for review.
type CampaignAssetRecord struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	AssetID    string `json:"asset_id"` // AssetRecord.ID of the stored image

	Role     string      `json:"role"`
	Purpose  string      `json:"purpose"`
	Platform string      `json:"platform,omitempty"`
	Variant  string      `json:"variant,omitempty"`
	Specs    SpecDetails `json:"specs"`
	Status   AssetStatus `json:"status"`

	GenerationPrompt   string `json:"generation_prompt"`
	GenerationModel    string `json:"generation_model"`
	GenerationCost     int    `json:"generation_cost"`
	GenerationTimeMS   int64  `json:"generation_time_ms"`
	GenerationAttempts int    `json:"generation_attempts"`

	QualityResults *QualityCheckResult `json:"quality_results,omitempty"`

	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// CampaignStore is the campaign repository contract the pipeline needs:
// read one campaign, persist status flips and stage outputs.
type CampaignStore interface {
	GetCampaign(ctx context.Context, id string) (*Campaign, error)
	CreateCampaign(ctx context.Context, c *Campaign) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateBrief(ctx context.Context, id string, brief *CreativeBrief, status Status) error
	UpdateGenerationMetadata(ctx context.Context, id string, meta *GenerationMetadata) error
}

// AssetStore reads brand/inspiration asset records and persists generated
// images as new records.
type AssetStore interface {
	GetAssets(ctx context.Context, ids []string) ([]AssetRecord, error)
	CreateAsset(ctx context.Context, rec *AssetRecord) error
}

// CampaignAssetStore inserts one linking record per generated asset.
type CampaignAssetStore interface {
	InsertCampaignAsset(ctx context.Context, rec *CampaignAssetRecord) error
	ListCampaignAssets(ctx context.Context, campaignID string) ([]CampaignAssetRecord, error)
}

// ResultWriter persists the post-QC artifacts of one pipeline run as a unit.
// Implementations decide atomicity; the SQLite store wraps the whole batch in
// a single transaction so a fatal persistence error leaves no partial rows.
type ResultWriter interface {
	WriteResults(ctx context.Context, campaignID string, pairs []ResultPair) error
}

// ResultPair joins one generated asset with its quality verdict and source
// spec for persistence.
type ResultPair struct {
	Spec    AssetSpec
	Asset   GeneratedAsset
	Quality QualityCheckResult
}
