package repository

import (
	"context"
	"fmt"
	"time"
)

// DailyTotals is one day's content counters, aggregated across the
// active uploads table and the archive.
type DailyTotals struct {
	Day    time.Time
	Videos int
	Images int
}

// StatsRepository aggregates content counters across uploads and archive.
type StatsRepository interface {
	// TotalsByMediaType returns the all-time video and image counts,
	// counting both active and archived uploads.
	TotalsByMediaType(ctx context.Context) (videos int, images int, err error)
	// DailyCounts returns per-day counters for uploads created at or
	// after the given time, oldest day first.
	DailyCounts(ctx context.Context, since time.Time) ([]DailyTotals, error)
}

type statsRepo struct {
	db DBTX
}

// NewStatsRepository creates the stats repository.
func NewStatsRepository(db DBTX) StatsRepository {
	return &statsRepo{db: db}
}

// Archived rows keep their original created_at, so a row counts toward
// the day it was uploaded regardless of where it lives now.
const combinedUploads = `
	SELECT media_type, created_at FROM uploads
	UNION ALL
	SELECT media_type, created_at FROM archive`

func (r *statsRepo) TotalsByMediaType(ctx context.Context) (int, int, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE media_type = 'video'),
			COUNT(*) FILTER (WHERE media_type = 'image')
		FROM (%s) combined`, combinedUploads)

	var videos, images int
	if err := r.db.QueryRow(ctx, query).Scan(&videos, &images); err != nil {
		return 0, 0, fmt.Errorf("failed to count media totals: %w", err)
	}
	return videos, images, nil
}

func (r *statsRepo) DailyCounts(ctx context.Context, since time.Time) ([]DailyTotals, error) {
	query := fmt.Sprintf(`
		SELECT
			date_trunc('day', created_at) AS day,
			COUNT(*) FILTER (WHERE media_type = 'video'),
			COUNT(*) FILTER (WHERE media_type = 'image')
		FROM (%s) combined
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day ASC`, combinedUploads)

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count daily uploads: %w", err)
	}
	defer rows.Close()

	var result []DailyTotals
	for rows.Next() {
		var totals DailyTotals
		if err := rows.Scan(&totals.Day, &totals.Videos, &totals.Images); err != nil {
			return nil, fmt.Errorf("failed to scan daily counts: %w", err)
		}
		result = append(result, totals)
	}
	return result, rows.Err()
}
