package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"content-portal-api/internal/models"
	"content-portal-api/internal/pool"
	"content-portal-api/internal/repository"
)

// UploadService manages upload metadata and the server-side media
// ingest path.
type UploadService struct {
	uploads  repository.UploadRepository
	editors  repository.EditorRepository
	blobs    *BlobService
	uploader *Uploader
	cleanup  *pool.WorkerPool
}

// NewUploadService creates the uploads service.
func NewUploadService(
	uploads repository.UploadRepository,
	editors repository.EditorRepository,
	blobs *BlobService,
	uploader *Uploader,
	cleanup *pool.WorkerPool,
) *UploadService {
	return &UploadService{
		uploads:  uploads,
		editors:  editors,
		blobs:    blobs,
		uploader: uploader,
		cleanup:  cleanup,
	}
}

// Create validates and records the metadata of a completed upload.
func (s *UploadService) Create(ctx context.Context, req *models.CreateUploadRequest) (*models.Upload, error) {
	if req.EditorID == "" {
		return nil, fmt.Errorf("editor_id is required")
	}
	if req.FileName == "" {
		return nil, fmt.Errorf("file_name is required")
	}
	if req.MediaURL == "" {
		return nil, fmt.Errorf("media_url is required")
	}
	if req.MediaType != models.MediaTypeVideo && req.MediaType != models.MediaTypeImage {
		return nil, fmt.Errorf("media_type must be %q or %q", models.MediaTypeVideo, models.MediaTypeImage)
	}

	if _, err := s.editors.GetByID(ctx, req.EditorID); err != nil {
		return nil, fmt.Errorf("unknown editor: %w", err)
	}

	upload := &models.Upload{
		ID:           uuid.NewString(),
		EditorID:     req.EditorID,
		FileName:     req.FileName,
		Caption:      req.Caption,
		MediaURL:     req.MediaURL,
		MediaType:    req.MediaType,
		ThumbnailURL: req.ThumbnailURL,
	}

	if err := s.uploads.Create(ctx, upload); err != nil {
		return nil, err
	}
	return upload, nil
}

// Ingest pushes a file through the retrying upload pipeline and returns
// the stored object's public URL. The destination key follows the
// editor-prefixed key policy.
func (s *UploadService) Ingest(ctx context.Context, editorID string, file UploadFile, mediaType string, thumbnail bool, onProgress ProgressFunc) (string, error) {
	if err := s.blobs.ValidateUpload(mediaType, file.ContentType, file.Size); err != nil {
		return "", err
	}

	policy, err := s.blobs.Policy(editorID, file.Name, mediaType, thumbnail)
	if err != nil {
		return "", err
	}

	return s.uploader.UploadWithRetry(ctx, file, policy.Key, editorID, onProgress)
}

// Policy resolves the upload constraints for a prospective client-side
// transfer.
func (s *UploadService) Policy(ctx context.Context, editorID, filename, mediaType string, thumbnail bool) (*models.UploadPolicyResponse, error) {
	if _, err := s.editors.GetByID(ctx, editorID); err != nil {
		return nil, fmt.Errorf("unknown editor: %w", err)
	}
	return s.blobs.Policy(editorID, filename, mediaType, thumbnail)
}

// List returns all uploads with their editor, optionally filtered by
// media type.
func (s *UploadService) List(ctx context.Context, mediaType *string) ([]*models.UploadWithEditor, error) {
	return s.uploads.List(ctx, mediaType)
}

// ListByEditor returns one editor's uploads.
func (s *UploadService) ListByEditor(ctx context.Context, editorID string) ([]*models.Upload, error) {
	return s.uploads.ListByEditor(ctx, editorID)
}

// Delete removes one upload record and queues its blob objects for
// background deletion.
func (s *UploadService) Delete(ctx context.Context, id string) error {
	upload, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.uploads.Delete(ctx, id); err != nil {
		return err
	}

	urls := []string{upload.MediaURL}
	if upload.ThumbnailURL != nil && *upload.ThumbnailURL != "" {
		urls = append(urls, *upload.ThumbnailURL)
	}
	s.scheduleBlobCleanup(urls)
	return nil
}

func (s *UploadService) scheduleBlobCleanup(mediaURLs []string) {
	if s.cleanup == nil || s.blobs == nil {
		return
	}

	for _, url := range mediaURLs {
		key, ok := s.blobs.KeyFromURL(url)
		if !ok {
			log.Printf("⚠️ skipping blob cleanup for unrecognized URL: %s", url)
			continue
		}

		if err := s.cleanup.Submit(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return s.blobs.Delete(ctx, key)
		}); err != nil {
			log.Printf("⚠️ failed to queue blob cleanup for %s: %v", key, err)
		}
	}
}
