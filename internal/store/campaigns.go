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

// CreateCampaign inserts a new campaign row. Structured inputs are stored as
// JSON blobs; SQLite is a document store here, not a relational model of the
// brief.
func (s *Store) CreateCampaign(ctx context.Context, c *campaign.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.Store("Creating campaign %s (%s)", c.ID, c.Name)

	brandAssets, err := json.Marshal(c.BrandAssets)
	if err != nil {
		return fmt.Errorf("failed to marshal brand assets: %w", err)
	}
	inspiration, err := json.Marshal(c.Inspiration)
	if err != nil {
		return fmt.Errorf("failed to marshal inspiration: %w", err)
	}
	requirements, err := json.Marshal(c.Requirements)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = campaign.StatusDraft
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, objective, status, brand_assets, inspiration, requirements, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Objective, string(c.Status),
		string(brandAssets), string(inspiration), string(requirements),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

// GetCampaign loads one campaign by id. Returns ErrNotFound when absent.
func (s *Store) GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, objective, status, brand_assets, inspiration, requirements,
		       creative_brief, generation_metadata, created_at, updated_at
		FROM campaigns WHERE id = ?`, id)

	var c campaign.Campaign
	var status string
	var brandAssets, inspiration, requirements string
	var brief, meta sql.NullString

	err := row.Scan(&c.ID, &c.Name, &c.Objective, &status,
		&brandAssets, &inspiration, &requirements,
		&brief, &meta, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign %s: %w", id, err)
	}

	c.Status = campaign.Status(status)
	if err := json.Unmarshal([]byte(brandAssets), &c.BrandAssets); err != nil {
		return nil, fmt.Errorf("failed to parse brand assets for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(inspiration), &c.Inspiration); err != nil {
		return nil, fmt.Errorf("failed to parse inspiration for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(requirements), &c.Requirements); err != nil {
		return nil, fmt.Errorf("failed to parse requirements for %s: %w", id, err)
	}
	if brief.Valid && brief.String != "" {
		c.CreativeBrief = &campaign.CreativeBrief{}
		if err := json.Unmarshal([]byte(brief.String), c.CreativeBrief); err != nil {
			return nil, fmt.Errorf("failed to parse creative brief for %s: %w", id, err)
		}
	}
	if meta.Valid && meta.String != "" {
		c.GenerationMetadata = &campaign.GenerationMetadata{}
		if err := json.Unmarshal([]byte(meta.String), c.GenerationMetadata); err != nil {
			return nil, fmt.Errorf("failed to parse generation metadata for %s: %w", id, err)
		}
	}

	return &c, nil
}

// UpdateStatus flips the campaign's lifecycle status.
func (s *Store) UpdateStatus(ctx context.Context, id string, status campaign.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Campaign %s -> %s", id, status)

	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update status for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateBrief persists a freshly synthesized brief and the accompanying
// status flip in one statement.
func (s *Store) UpdateBrief(ctx context.Context, id string, brief *campaign.CreativeBrief, status campaign.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(brief)
	if err != nil {
		return fmt.Errorf("failed to marshal brief: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET creative_brief = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(payload), string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update brief for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateGenerationMetadata persists the post-generation rollup.
func (s *Store) UpdateGenerationMetadata(ctx context.Context, id string, meta *campaign.GenerationMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal generation metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET generation_metadata = ?, updated_at = ? WHERE id = ?`,
		string(payload), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update generation metadata for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// requireRow converts a zero-row UPDATE into ErrNotFound.
func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil // Driver cannot report; treat as success
	}
	if n == 0 {
		return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return nil
}
