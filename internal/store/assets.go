package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adforge/internal/campaign"
	"adforge/internal/logging"
)

const assetColumns = `id, file_name, file_path, file_type, mime_type, file_size, width, height, caption, created_at`

// GetAssets loads the asset records for the given ids. Missing ids are
// skipped, not errors: campaign inputs reference assets the user may have
// deleted since.
func (s *Store) GetAssets(ctx context.Context, ids []string) ([]campaign.AssetRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM assets WHERE id IN (%s)`, assetColumns, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	defer rows.Close()

	var records []campaign.AssetRecord
	for rows.Next() {
		var r campaign.AssetRecord
		if err := rows.Scan(&r.ID, &r.FileName, &r.FilePath, &r.FileType, &r.MimeType,
			&r.FileSize, &r.Width, &r.Height, &r.Caption, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	logging.StoreDebug("Loaded %d/%d asset records", len(records), len(ids))
	return records, nil
}

// CreateAsset inserts a new asset record.
func (s *Store) CreateAsset(ctx context.Context, rec *campaign.AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FileName, rec.FilePath, rec.FileType, rec.MimeType,
		rec.FileSize, rec.Width, rec.Height, rec.Caption, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert asset %s: %w", rec.ID, err)
	}
	return nil
}
