package services

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"content-portal-api/internal/models"
	"content-portal-api/internal/repository"
)

// CSV export filters.
const (
	ExportFilterAll    = "all"
	ExportFilterVideos = "videos"
	ExportFilterImages = "images"
)

// AdminService backs the administrator surface: password verification,
// stats, CSV export, archive maintenance and error log inspection.
type AdminService struct {
	password       string
	purgeAfterDays int

	uploads  repository.UploadRepository
	archive  repository.ArchiveRepository
	stats    repository.StatsRepository
	txRunner *repository.TxRunner
	reporter *ErrorReporter

	// now is injectable for tests.
	now func() time.Time
}

// NewAdminService creates the admin service.
func NewAdminService(
	password string,
	purgeAfterDays int,
	uploads repository.UploadRepository,
	archive repository.ArchiveRepository,
	stats repository.StatsRepository,
	txRunner *repository.TxRunner,
	reporter *ErrorReporter,
) *AdminService {
	if purgeAfterDays <= 0 {
		purgeAfterDays = 7
	}
	return &AdminService{
		password:       password,
		purgeAfterDays: purgeAfterDays,
		uploads:        uploads,
		archive:        archive,
		stats:          stats,
		txRunner:       txRunner,
		reporter:       reporter,
		now:            time.Now,
	}
}

// VerifyPassword checks the submitted admin password.
func (s *AdminService) VerifyPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

// Stats aggregates portal-wide counters: all-time totals plus the last
// seven days of daily counts, oldest day first. Days without uploads
// appear with zero counts.
func (s *AdminService) Stats(ctx context.Context) (*models.StatsResponse, error) {
	videos, images, err := s.stats.TotalsByMediaType(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -6)

	counts, err := s.stats.DailyCounts(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]repository.DailyTotals, len(counts))
	for _, c := range counts {
		byDay[c.Day.Format("2006-01-02")] = c
	}

	daily := make([]models.DailyCount, 0, 7)
	for i := 0; i < 7; i++ {
		day := windowStart.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		totals := byDay[key]
		daily = append(daily, models.DailyCount{
			Date:   key,
			Day:    day.Weekday().String(),
			Videos: totals.Videos,
			Images: totals.Images,
			Total:  totals.Videos + totals.Images,
		})
	}

	return &models.StatsResponse{
		TotalReels:  videos,
		TotalImages: images,
		Daily:       daily,
		Timestamp:   now.Unix(),
	}, nil
}

// ExportCSV renders the current uploads as a CSV attachment. filter is
// one of all/videos/images. The thumbnail column is only populated for
// videos.
func (s *AdminService) ExportCSV(ctx context.Context, filter string) ([]byte, string, error) {
	var mediaType *string
	switch filter {
	case ExportFilterAll, "":
		filter = ExportFilterAll
	case ExportFilterVideos:
		t := models.MediaTypeVideo
		mediaType = &t
	case ExportFilterImages:
		t := models.MediaTypeImage
		mediaType = &t
	default:
		return nil, "", fmt.Errorf("unknown export filter: %s", filter)
	}

	uploads, err := s.uploads.List(ctx, mediaType)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Media Type", "File Name", "Description", "Media Link", "Thumbnail Link"}); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, upload := range uploads {
		thumbnail := ""
		if upload.MediaType == models.MediaTypeVideo && upload.ThumbnailURL != nil {
			thumbnail = *upload.ThumbnailURL
		}
		if err := writer.Write([]string{
			upload.MediaType,
			upload.FileName,
			upload.Caption,
			upload.MediaURL,
			thumbnail,
		}); err != nil {
			return nil, "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	filename := fmt.Sprintf("uploads-%s-%s.csv", filter, s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ResetDaily archives every upload created today (reason daily_reset)
// and removes it from the active table, atomically.
func (s *AdminService) ResetDaily(ctx context.Context) (int64, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var archived int64
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		count, err := repository.NewArchiveRepository(tx).ArchiveCreatedSince(ctx, midnight, models.ArchiveReasonDailyReset)
		if err != nil {
			return err
		}
		archived = count

		_, err = repository.NewUploadRepository(tx).DeleteCreatedSince(ctx, midnight)
		return err
	})
	return archived, err
}

// PurgeOld archives uploads older than the retention window (reason
// purge_old) and removes them from the active table, atomically.
func (s *AdminService) PurgeOld(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -s.purgeAfterDays)

	var archived int64
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		count, err := repository.NewArchiveRepository(tx).ArchiveOlderThan(ctx, cutoff, models.ArchiveReasonPurgeOld)
		if err != nil {
			return err
		}
		archived = count

		_, err = repository.NewUploadRepository(tx).DeleteOlderThan(ctx, cutoff)
		return err
	})
	return archived, err
}

// ListArchive returns the archive with editor context, newest first.
func (s *AdminService) ListArchive(ctx context.Context) ([]*models.ArchiveEntryWithEditor, error) {
	return s.archive.List(ctx)
}

// DeleteArchiveEntries removes the selected archive entries.
func (s *AdminService) DeleteArchiveEntries(ctx context.Context, ids []int64) (int64, error) {
	return s.archive.DeleteByIDs(ctx, ids)
}

// ErrorLogs returns recent pipeline failure events.
func (s *AdminService) ErrorLogs(ctx context.Context, limit int) ([]*models.ErrorLogEntry, error) {
	return s.reporter.Recent(ctx, limit)
}
