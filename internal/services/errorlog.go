package services

import (
	"context"
	"log"
	"time"

	"content-portal-api/internal/models"
	"content-portal-api/internal/repository"
)

// Error type tags written to the error log store.
const (
	ErrorTypeDirectUploadFailed  = "DIRECT_UPLOAD_FAILED"
	ErrorTypeChunkedUploadFailed = "CHUNKED_UPLOAD_FAILED"
	ErrorTypeUploadRetry         = "UPLOAD_RETRY"
	ErrorTypeAllRetriesExhausted = "UPLOAD_FAILED_ALL_RETRIES"
)

// ErrorReporter appends pipeline failure events to the error log store.
// Reporting never fails outward: a failed insert is logged locally and
// discarded so that logging cannot break the main flow.
type ErrorReporter struct {
	repo    repository.ErrorLogRepository
	timeout time.Duration
}

// NewErrorReporter creates a reporter over the error log repository.
// repo may be nil, in which case entries are only written to the
// process log.
func NewErrorReporter(repo repository.ErrorLogRepository) *ErrorReporter {
	return &ErrorReporter{
		repo:    repo,
		timeout: 10 * time.Second,
	}
}

// Report appends one entry. The insert runs detached from the caller's
// context so a canceled upload can still record its failure.
func (r *ErrorReporter) Report(entry *models.ErrorLogEntry) {
	log.Printf("⚠️ [%s] %s: %s", entry.RequestID, entry.ErrorType, entry.ErrorMessage)

	if r.repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.repo.Insert(ctx, entry); err != nil {
		// Swallowed: the log store must never break the pipeline.
		log.Printf("⚠️ failed to persist error log entry: %v", err)
	}
}

// Recent returns the most recent entries for the admin surface.
func (r *ErrorReporter) Recent(ctx context.Context, limit int) ([]*models.ErrorLogEntry, error) {
	if r.repo == nil {
		return nil, nil
	}
	return r.repo.ListRecent(ctx, limit)
}
