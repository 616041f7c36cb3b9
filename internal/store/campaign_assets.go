package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"adforge/internal/campaign"
	"adforge/internal/logging"
)

// InsertCampaignAsset links one generated asset to its campaign.
func (s *Store) InsertCampaignAsset(ctx context.Context, rec *campaign.CampaignAssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertCampaignAsset(ctx, s.db, rec)
}

// execer abstracts *sql.DB and *sql.Tx so campaign-asset inserts can run
// standalone or inside the result-writing transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCampaignAsset(ctx context.Context, db execer, rec *campaign.CampaignAssetRecord) error {
	specs, err := json.Marshal(rec.Specs)
	if err != nil {
		return fmt.Errorf("failed to marshal specs: %w", err)
	}

	var quality sql.NullString
	if rec.QualityResults != nil {
		payload, err := json.Marshal(rec.QualityResults)
		if err != nil {
			return fmt.Errorf("failed to marshal quality results: %w", err)
		}
		quality = sql.NullString{String: string(payload), Valid: true}
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO campaign_assets (
			id, campaign_id, asset_id, role, purpose, platform, variant, specs, status,
			generation_prompt, generation_model, generation_cost, generation_time_ms,
			generation_attempts, quality_results, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CampaignID, rec.AssetID, rec.Role, rec.Purpose, rec.Platform,
		rec.Variant, string(specs), string(rec.Status),
		rec.GenerationPrompt, rec.GenerationModel, rec.GenerationCost,
		rec.GenerationTimeMS, rec.GenerationAttempts, quality, rec.SortOrder, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert campaign asset %s: %w", rec.ID, err)
	}
	return nil
}

// ListCampaignAssets returns every asset linked to a campaign in sort order.
func (s *Store) ListCampaignAssets(ctx context.Context, campaignID string) ([]campaign.CampaignAssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, asset_id, role, purpose, platform, variant, specs, status,
		       generation_prompt, generation_model, generation_cost, generation_time_ms,
		       generation_attempts, quality_results, sort_order, created_at
		FROM campaign_assets WHERE campaign_id = ? ORDER BY sort_order, created_at`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign assets for %s: %w", campaignID, err)
	}
	defer rows.Close()

	var records []campaign.CampaignAssetRecord
	for rows.Next() {
		var r campaign.CampaignAssetRecord
		var status, specs string
		var quality sql.NullString
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.AssetID, &r.Role, &r.Purpose,
			&r.Platform, &r.Variant, &specs, &status,
			&r.GenerationPrompt, &r.GenerationModel, &r.GenerationCost,
			&r.GenerationTimeMS, &r.GenerationAttempts, &quality,
			&r.SortOrder, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign asset: %w", err)
		}
		r.Status = campaign.AssetStatus(status)
		if err := json.Unmarshal([]byte(specs), &r.Specs); err != nil {
			return nil, fmt.Errorf("failed to parse specs for %s: %w", r.ID, err)
		}
		if quality.Valid && quality.String != "" {
			r.QualityResults = &campaign.QualityCheckResult{}
			if err := json.Unmarshal([]byte(quality.String), r.QualityResults); err != nil {
				return nil, fmt.Errorf("failed to parse quality results for %s: %w", r.ID, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate campaign assets: %w", err)
	}

	logging.StoreDebug("Loaded %d campaign assets for %s", len(records), campaignID)
	return records, nil
}
