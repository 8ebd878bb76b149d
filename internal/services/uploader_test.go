package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"content-portal-api/internal/blob"
	"content-portal-api/internal/models"
)

type storeCall struct {
	key      string
	size     int64
	progress bool
}

type fakeStore struct {
	calls    []storeCall
	failures int // number of leading calls that fail
}

func (s *fakeStore) Store(_ context.Context, key string, reader io.Reader, size int64, opts blob.StoreOptions) (*blob.StoreResult, error) {
	s.calls = append(s.calls, storeCall{key: key, size: size, progress: opts.ProgressCallback != nil})

	if len(s.calls) <= s.failures {
		return nil, errors.New("connection reset")
	}

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(size, size)
	}

	return &blob.StoreResult{
		Key:       key,
		PublicURL: "https://cdn.example.com/" + key,
		Size:      size,
	}, nil
}

type fakeErrorLogRepo struct {
	entries []*models.ErrorLogEntry
	fail    bool
}

func (r *fakeErrorLogRepo) Insert(_ context.Context, entry *models.ErrorLogEntry) error {
	if r.fail {
		return errors.New("insert failed")
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeErrorLogRepo) ListRecent(_ context.Context, _ int) ([]*models.ErrorLogEntry, error) {
	return r.entries, nil
}

func testUploader(store ObjectStore, repo *fakeErrorLogRepo, maxRetries int) (*Uploader, *[]time.Duration) {
	u := NewUploader(store, NewNetworkEstimator(nil, "wifi"), NewErrorReporter(repo), maxRetries, false)

	var sleeps []time.Duration
	u.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return u, &sleeps
}

func testFile(size int) UploadFile {
	name := "clip.mp4"
	return UploadFile{
		Name:        name,
		Size:        int64(size),
		ContentType: "video/mp4",
		Reader:      bytes.NewReader(make([]byte, size)),
	}
}

func TestUploadWithRetrySucceedsFirstAttempt(t *testing.T) {
	store := &fakeStore{}
	repo := &fakeErrorLogRepo{}
	u, sleeps := testUploader(store, repo, 3)

	url, err := u.UploadWithRetry(context.Background(), testFile(1024), "uploads/ed1/clip.mp4", "ed1", nil)
	if err != nil {
		t.Fatalf("UploadWithRetry() error = %v", err)
	}
	if url != "https://cdn.example.com/uploads/ed1/clip.mp4" {
		t.Errorf("url = %q", url)
	}
	if len(store.calls) != 1 {
		t.Errorf("store calls = %d, want 1", len(store.calls))
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", *sleeps)
	}
	if len(repo.entries) != 0 {
		t.Errorf("error log entries = %d, want 0", len(repo.entries))
	}
}

func TestUploadWithRetryBackoffAndRecovery(t *testing.T) {
	store := &fakeStore{failures: 2}
	repo := &fakeErrorLogRepo{}
	u, sleeps := testUploader(store, repo, 3)

	url, err := u.UploadWithRetry(context.Background(), testFile(1024), "uploads/ed1/clip.mp4", "ed1", nil)
	if err != nil {
		t.Fatalf("UploadWithRetry() error = %v", err)
	}
	if url == "" {
		t.Error("url is empty")
	}
	if len(store.calls) != 3 {
		t.Errorf("store calls = %d, want 3", len(store.calls))
	}

	// Exponential backoff: 2s after the first failure, 4s after the second.
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleeps[%d] = %s, want %s", i, (*sleeps)[i], d)
		}
	}

	// Each failed attempt logs the strategy failure plus a retry entry.
	var retries int
	for _, entry := range repo.entries {
		if entry.ErrorType == ErrorTypeUploadRetry {
			retries++
		}
	}
	if retries != 2 {
		t.Errorf("UPLOAD_RETRY entries = %d, want 2", retries)
	}
}

func TestUploadWithRetryExhaustion(t *testing.T) {
	store := &fakeStore{failures: 3}
	repo := &fakeErrorLogRepo{}
	u, _ := testUploader(store, repo, 3)

	_, err := u.UploadWithRetry(context.Background(), testFile(1024), "uploads/ed1/clip.mp4", "ed1", nil)
	if err == nil {
		t.Fatal("UploadWithRetry() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error = %v, want the last attempt's cause", err)
	}
	if len(store.calls) != 3 {
		t.Errorf("store calls = %d, want 3", len(store.calls))
	}

	var retries, terminal int
	var terminalEntry *models.ErrorLogEntry
	for _, entry := range repo.entries {
		switch entry.ErrorType {
		case ErrorTypeUploadRetry:
			retries++
		case ErrorTypeAllRetriesExhausted:
			terminal++
			terminalEntry = entry
		}
	}
	if retries != 2 {
		t.Errorf("UPLOAD_RETRY entries = %d, want maxRetries-1 = 2", retries)
	}
	if terminal != 1 {
		t.Fatalf("UPLOAD_FAILED_ALL_RETRIES entries = %d, want 1", terminal)
	}
	if got := terminalEntry.Details["retry_count"]; got != 3 {
		t.Errorf("terminal retry_count = %v, want 3", got)
	}
}

func TestUploadStrategySelection(t *testing.T) {
	tests := []struct {
		name         string
		size         int
		wantProgress bool
		wantType     string
	}{
		{"small file goes direct", 1024, false, ErrorTypeDirectUploadFailed},
		{"threshold boundary goes chunked", DirectUploadThreshold, true, ErrorTypeChunkedUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{failures: 1}
			repo := &fakeErrorLogRepo{}
			u, _ := testUploader(store, repo, 1)

			_, err := u.UploadWithRetry(context.Background(), testFile(tt.size), "uploads/ed1/f", "ed1", nil)
			if err == nil {
				t.Fatal("expected failure")
			}

			if store.calls[0].progress != tt.wantProgress {
				t.Errorf("progress callback wired = %t, want %t", store.calls[0].progress, tt.wantProgress)
			}
			if len(repo.entries) == 0 || repo.entries[0].ErrorType != tt.wantType {
				t.Errorf("first entry type = %v, want %s", repo.entries, tt.wantType)
			}
		})
	}
}

func TestChunkedUploadChunkAccounting(t *testing.T) {
	store := &fakeStore{failures: 1}
	repo := &fakeErrorLogRepo{}
	u, _ := testUploader(store, repo, 1)

	// 25 MiB past the threshold: ceil(75MiB / 10MiB) = 8 chunks.
	size := 75 * 1024 * 1024
	_, err := u.UploadWithRetry(context.Background(), testFile(size), "uploads/ed1/big.mp4", "ed1", nil)
	if err == nil {
		t.Fatal("expected failure")
	}

	entry := repo.entries[0]
	if entry.ErrorType != ErrorTypeChunkedUploadFailed {
		t.Fatalf("entry type = %s, want %s", entry.ErrorType, ErrorTypeChunkedUploadFailed)
	}
	if got := entry.Details["total_chunks"]; got != 8 {
		t.Errorf("total_chunks = %v, want 8", got)
	}
	if got := entry.Details["chunk_size"]; got != UploadChunkSize {
		t.Errorf("chunk_size = %v, want %d", got, UploadChunkSize)
	}
}

func TestUploadFinalProgressReportsCompletion(t *testing.T) {
	store := &fakeStore{}
	u, _ := testUploader(store, &fakeErrorLogRepo{}, 1)

	var last UploadProgress
	var calls int
	_, err := u.UploadWithRetry(context.Background(), testFile(1024), "uploads/ed1/f", "ed1", func(p UploadProgress) {
		last = p
		calls++
	})
	if err != nil {
		t.Fatalf("UploadWithRetry() error = %v", err)
	}
	if calls == 0 {
		t.Fatal("progress callback never invoked")
	}
	if last.Percentage != 100 {
		t.Errorf("final Percentage = %f, want 100", last.Percentage)
	}
	if last.Loaded != 1024 || last.Total != 1024 {
		t.Errorf("final progress = %d/%d, want 1024/1024", last.Loaded, last.Total)
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestErrorReporterSwallowsInsertFailure(t *testing.T) {
	repo := &fakeErrorLogRepo{fail: true}
	reporter := NewErrorReporter(repo)

	// Must not panic or propagate the failed insert.
	reporter.Report(&models.ErrorLogEntry{
		ErrorType:    ErrorTypeUploadRetry,
		ErrorMessage: "connection reset",
		RequestID:    "test",
	})
}
