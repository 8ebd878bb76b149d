package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"content-portal-api/internal/blob"
	"content-portal-api/internal/models"
)

// Transfer strategy constants.
const (
	// DirectUploadThreshold is the file size below which a single direct
	// transfer is issued instead of the chunk-accounted path.
	DirectUploadThreshold = 50 * 1024 * 1024

	// UploadChunkSize is the conceptual segment size used for progress
	// and metrics accounting on large transfers. The transfer itself is
	// issued as one call; the partition is bookkeeping.
	UploadChunkSize = 10 * 1024 * 1024

	// DefaultMaxRetries bounds the retry loop.
	DefaultMaxRetries = 3
)

// UploadProgress is the payload of one progress callback.
type UploadProgress struct {
	Loaded        int64   `json:"loaded"`
	Total         int64   `json:"total"`
	Percentage    float64 `json:"percentage"`
	Speed         float64 `json:"speed"`          // bytes/sec
	TimeRemaining float64 `json:"time_remaining"` // seconds
}

// ProgressFunc receives progress updates during a transfer. It may be
// called any number of times (including zero); the final call before a
// successful return reports 100%.
type ProgressFunc func(UploadProgress)

// UploadMetrics is a per-attempt record. A fresh one is created for
// every attempt; cross-attempt totals are not accumulated.
type UploadMetrics struct {
	StartTime         time.Time
	LastChunkTime     time.Time
	BytesUploaded     int64
	TotalBytes        int64
	ChunkCount        int
	FailedChunks      int
	RetryCount        int
	InterruptionCount int
}

// UploadFile describes one file handed to the pipeline. The reader must
// be seekable so failed attempts can restart from the beginning.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.ReadSeeker
}

// ObjectStore is the slice of the blob provider the pipeline needs.
type ObjectStore interface {
	Store(ctx context.Context, key string, reader io.Reader, size int64, opts blob.StoreOptions) (*blob.StoreResult, error)
}

// Uploader runs the retrying transfer pipeline: size-based strategy per
// attempt, exponential backoff between attempts, every failure recorded
// to the error log store.
type Uploader struct {
	store      ObjectStore
	estimator  *NetworkEstimator
	reporter   *ErrorReporter
	maxRetries int
	logEnabled bool

	// sleep is injectable for tests; defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewUploader creates the upload pipeline. maxRetries <= 0 selects the
// default of 3.
func NewUploader(store ObjectStore, estimator *NetworkEstimator, reporter *ErrorReporter, maxRetries int, logEnabled bool) *Uploader {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Uploader{
		store:      store,
		estimator:  estimator,
		reporter:   reporter,
		maxRetries: maxRetries,
		logEnabled: logEnabled,
		sleep:      sleepContext,
	}
}

// UploadWithRetry transfers a file to the given object key, retrying up
// to the configured bound with exponential backoff (2s, 4s, 8s, ...).
// On success the stored object's public URL is returned; after retry
// exhaustion the last attempt's error is returned.
func (u *Uploader) UploadWithRetry(ctx context.Context, file UploadFile, key string, editorID string, onProgress ProgressFunc) (string, error) {
	sessionID := newSessionID()

	var lastErr error
	for attempt := 1; attempt <= u.maxRetries; attempt++ {
		if u.logEnabled {
			log.Printf("[%s] upload attempt %d/%d: %s (%d bytes)", sessionID, attempt, u.maxRetries, file.Name, file.Size)
		}

		url, err := u.uploadLarge(ctx, file, key, editorID, sessionID, onProgress)
		if err == nil {
			if u.logEnabled {
				log.Printf("✅ [%s] upload succeeded on attempt %d: %s", sessionID, attempt, url)
			}
			return url, nil
		}
		lastErr = err

		if attempt < u.maxRetries {
			delay := backoffDelay(attempt)
			u.report(&models.ErrorLogEntry{
				ErrorType:    ErrorTypeUploadRetry,
				ErrorMessage: err.Error(),
				FileName:     &file.Name,
				FileSize:     &file.Size,
				EditorID:     optional(editorID),
				RequestID:    sessionID,
				Details: map[string]any{
					"attempt":  attempt,
					"delay_ms": delay.Milliseconds(),
				},
			})

			if sleepErr := u.sleep(ctx, delay); sleepErr != nil {
				return "", sleepErr
			}
		}
	}

	u.report(&models.ErrorLogEntry{
		ErrorType:    ErrorTypeAllRetriesExhausted,
		ErrorMessage: errorMessage(lastErr),
		FileName:     &file.Name,
		FileSize:     &file.Size,
		EditorID:     optional(editorID),
		RequestID:    sessionID,
		Details: map[string]any{
			"retry_count": u.maxRetries,
		},
	})

	if lastErr == nil {
		lastErr = errors.New("upload failed after multiple attempts")
	}
	return "", lastErr
}

// uploadLarge is the size-based transfer strategy for one attempt.
func (u *Uploader) uploadLarge(ctx context.Context, file UploadFile, key string, editorID, sessionID string, onProgress ProgressFunc) (string, error) {
	diag := u.estimator.Detect()
	if u.logEnabled {
		estimated := EstimateUploadTime(file.Size, diag)
		log.Printf("[%s] network: %s est=%ds", sessionID, FormatDiagnostics(diag), estimated)
	}

	if _, err := file.Reader.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}

	metrics := &UploadMetrics{
		StartTime:  time.Now(),
		TotalBytes: file.Size,
	}

	if file.Size < DirectUploadThreshold {
		return u.uploadDirect(ctx, file, key, editorID, sessionID, diag, metrics, onProgress)
	}
	return u.uploadChunked(ctx, file, key, editorID, sessionID, diag, metrics, onProgress)
}

// uploadDirect issues exactly one direct transfer for small files.
func (u *Uploader) uploadDirect(ctx context.Context, file UploadFile, key string, editorID, sessionID string, diag NetworkDiagnostics, metrics *UploadMetrics, onProgress ProgressFunc) (string, error) {
	result, err := u.store.Store(ctx, key, file.Reader, file.Size, blob.StoreOptions{
		ContentType: file.ContentType,
		Public:      true,
	})
	if err != nil {
		u.report(&models.ErrorLogEntry{
			ErrorType:    ErrorTypeDirectUploadFailed,
			ErrorMessage: err.Error(),
			FileName:     &file.Name,
			FileSize:     &file.Size,
			EditorID:     optional(editorID),
			RequestID:    sessionID,
			Details: map[string]any{
				"diagnostics": diag,
				"metrics":     metricsDetails(metrics),
			},
		})
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	metrics.BytesUploaded = file.Size
	metrics.LastChunkTime = time.Now()

	if onProgress != nil {
		elapsed := time.Since(metrics.StartTime).Seconds()
		speed := 0.0
		if elapsed > 0 {
			speed = float64(file.Size) / elapsed
		}
		onProgress(UploadProgress{
			Loaded:     file.Size,
			Total:      file.Size,
			Percentage: 100,
			Speed:      speed,
		})
	}

	return result.PublicURL, nil
}

// uploadChunked transfers a large file as one call while accounting
// progress against a conceptual fixed-size chunk partition.
func (u *Uploader) uploadChunked(ctx context.Context, file UploadFile, key string, editorID, sessionID string, diag NetworkDiagnostics, metrics *UploadMetrics, onProgress ProgressFunc) (string, error) {
	chunkCount := int(math.Ceil(float64(file.Size) / float64(UploadChunkSize)))
	metrics.ChunkCount = chunkCount

	progressCallback := func(loaded, total int64) {
		// Keep bytesUploaded monotone within the attempt.
		if loaded < metrics.BytesUploaded {
			return
		}
		metrics.BytesUploaded = loaded
		metrics.LastChunkTime = time.Now()

		if onProgress == nil {
			return
		}
		onProgress(computeProgress(loaded, total, metrics.StartTime))
	}

	result, err := u.store.Store(ctx, key, file.Reader, file.Size, blob.StoreOptions{
		ContentType:      file.ContentType,
		Public:           true,
		ProgressCallback: progressCallback,
	})
	if err != nil {
		u.report(&models.ErrorLogEntry{
			ErrorType:    ErrorTypeChunkedUploadFailed,
			ErrorMessage: err.Error(),
			FileName:     &file.Name,
			FileSize:     &file.Size,
			EditorID:     optional(editorID),
			RequestID:    sessionID,
			Details: map[string]any{
				"chunk_size":   UploadChunkSize,
				"total_chunks": chunkCount,
				"diagnostics":  diag,
				"metrics":      metricsDetails(metrics),
			},
		})
		return "", fmt.Errorf("failed to upload large file: %w", err)
	}

	// The backend may not have reported the final bytes; close out at 100%.
	if onProgress != nil && metrics.BytesUploaded < file.Size {
		metrics.BytesUploaded = file.Size
		metrics.LastChunkTime = time.Now()
		onProgress(computeProgress(file.Size, file.Size, metrics.StartTime))
	}

	return result.PublicURL, nil
}

func (u *Uploader) report(entry *models.ErrorLogEntry) {
	if u.reporter != nil {
		u.reporter.Report(entry)
	}
}

// backoffDelay is 2^attempt seconds: 2s, 4s, 8s, ...
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func computeProgress(loaded, total int64, start time.Time) UploadProgress {
	progress := UploadProgress{
		Loaded: loaded,
		Total:  total,
	}
	if total > 0 {
		progress.Percentage = float64(loaded) / float64(total) * 100
	}

	elapsed := time.Since(start).Seconds()
	if elapsed > 0 {
		progress.Speed = float64(loaded) / elapsed
	}
	if progress.Speed > 0 {
		progress.TimeRemaining = float64(total-loaded) / progress.Speed
	}
	return progress
}

func metricsDetails(m *UploadMetrics) map[string]any {
	return map[string]any{
		"bytes_uploaded":     m.BytesUploaded,
		"total_bytes":        m.TotalBytes,
		"chunk_count":        m.ChunkCount,
		"failed_chunks":      m.FailedChunks,
		"retry_count":        m.RetryCount,
		"interruption_count": m.InterruptionCount,
		"elapsed_ms":         time.Since(m.StartTime).Milliseconds(),
	}
}

// newSessionID builds the correlation id tagging every log line of one
// logical upload: millisecond timestamp plus a random suffix.
func newSessionID() string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixMilli())
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func errorMessage(err error) string {
	if err == nil {
		return "upload failed after multiple attempts"
	}
	return err.Error()
}
