package db

import (
	"context"
	"fmt"

	"github.com/bobarin/newsvoice/internal/models"
)

// RecordSynthesis inserts one synthesis history row.
func (db *DB) RecordSynthesis(ctx context.Context, rec *models.SynthesisRecord) error {
	query := `
		INSERT INTO syntheses (
			news_id, content_source, tts_engine, filename, text_length, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return db.QueryRowContext(
		ctx, query,
		rec.NewsID, rec.Source, rec.Engine, rec.Filename, rec.TextLength, rec.DurationMs,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// RecentSyntheses lists the most recent synthesis events, newest first.
func (db *DB) RecentSyntheses(ctx context.Context, limit int) ([]models.SynthesisRecord, error) {
	query := `
		SELECT id, news_id, content_source, tts_engine, filename, text_length, duration_ms, created_at
		FROM syntheses
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query syntheses: %w", err)
	}
	defer rows.Close()

	var records []models.SynthesisRecord
	for rows.Next() {
		var rec models.SynthesisRecord
		err := rows.Scan(
			&rec.ID, &rec.NewsID, &rec.Source, &rec.Engine,
			&rec.Filename, &rec.TextLength, &rec.DurationMs, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan synthesis: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
