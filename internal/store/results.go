package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"adforge/internal/campaign"
	"adforge/internal/logging"
)

// WriteResults persists one pipeline run's post-QC artifacts: an asset record
// and a campaign-asset link per generated asset. The whole batch runs in a
// single transaction, so a failure leaves no partial rows behind.
func (s *Store) WriteResults(ctx context.Context, campaignID string, pairs []campaign.ResultPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.Store("Writing %d results for campaign %s", len(pairs), campaignID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, pair := range pairs {
		assetID := uuid.NewString()
		rec := campaign.AssetRecord{
			ID:        assetID,
			FileName:  fmt.Sprintf("%s-%s-%d.png", campaignID, pair.Spec.Role, i+1),
			FilePath:  pair.Asset.URL,
			FileType:  "image",
			MimeType:  "image/png",
			Width:     pair.Asset.Metadata.Width,
			Height:    pair.Asset.Metadata.Height,
			Caption:   pair.Spec.Purpose,
			CreatedAt: now,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assets (`+assetColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.FileName, rec.FilePath, rec.FileType, rec.MimeType,
			rec.FileSize, rec.Width, rec.Height, rec.Caption, rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert asset record for %s: %w", pair.Spec.ID, err)
		}

		status := campaign.AssetGenerated
		if !pair.Quality.Passed {
			status = campaign.AssetFailed
		}

		quality := pair.Quality
		link := campaign.CampaignAssetRecord{
			ID:                 uuid.NewString(),
			CampaignID:         campaignID,
			AssetID:            assetID,
			Role:               pair.Spec.Role,
			Purpose:            pair.Spec.Purpose,
			Platform:           pair.Spec.Platform,
			Variant:            pair.Spec.Variant,
			Specs:              pair.Spec.Specs,
			Status:             status,
			GenerationPrompt:   pair.Asset.Metadata.Prompt,
			GenerationModel:    pair.Asset.Metadata.Model,
			GenerationCost:     pair.Asset.Metadata.CostCents,
			GenerationTimeMS:   pair.Asset.Metadata.GenerationTimeMS,
			GenerationAttempts: pair.Asset.Metadata.Attempt,
			QualityResults:     &quality,
			SortOrder:          i,
			CreatedAt:          now,
		}
		if err := insertCampaignAsset(ctx, tx, &link); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	logging.Store("Results persisted for campaign %s", campaignID)
	return nil
}
