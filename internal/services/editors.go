package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"content-portal-api/internal/models"
	"content-portal-api/internal/pool"
	"content-portal-api/internal/repository"
)

// EditorService manages the secret-link editor registry.
type EditorService struct {
	editors  repository.EditorRepository
	uploads  repository.UploadRepository
	archive  repository.ArchiveRepository
	txRunner *repository.TxRunner
	blobs    *BlobService
	cleanup  *pool.WorkerPool
}

// NewEditorService creates the editor registry service.
func NewEditorService(
	editors repository.EditorRepository,
	uploads repository.UploadRepository,
	archive repository.ArchiveRepository,
	txRunner *repository.TxRunner,
	blobs *BlobService,
	cleanup *pool.WorkerPool,
) *EditorService {
	return &EditorService{
		editors:  editors,
		uploads:  uploads,
		archive:  archive,
		txRunner: txRunner,
		blobs:    blobs,
		cleanup:  cleanup,
	}
}

// Create registers a new editor and mints their secret link.
func (s *EditorService) Create(ctx context.Context, req *models.CreateEditorRequest) (*models.Editor, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)

	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if req.Type != models.EditorTypeVideo && req.Type != models.EditorTypeGraphic {
		return nil, fmt.Errorf("type must be %q or %q", models.EditorTypeVideo, models.EditorTypeGraphic)
	}

	editor := &models.Editor{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        req.Type,
		Description: description,
		SecretLink:  newSecretLink(req.Type),
	}

	if err := s.editors.Create(ctx, editor); err != nil {
		return nil, err
	}
	return editor, nil
}

// List returns all registered editors, newest first.
func (s *EditorService) List(ctx context.Context) ([]*models.Editor, error) {
	return s.editors.List(ctx)
}

// Get returns one editor by id.
func (s *EditorService) Get(ctx context.Context, id string) (*models.Editor, error) {
	return s.editors.GetByID(ctx, id)
}

// Resolve looks up the editor a secret link belongs to.
func (s *EditorService) Resolve(ctx context.Context, secretLink string) (*models.Editor, error) {
	return s.editors.GetBySecretLink(ctx, secretLink)
}

// Delete tears down an editor: uploads, archive entries and the editor
// row are removed in one transaction, then the editor's blob objects
// are deleted in the background, best-effort.
func (s *EditorService) Delete(ctx context.Context, id string) error {
	if _, err := s.editors.GetByID(ctx, id); err != nil {
		return err
	}

	var mediaURLs []string
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		urls, err := repository.NewUploadRepository(tx).DeleteByEditor(ctx, id)
		if err != nil {
			return err
		}
		mediaURLs = urls

		if err := repository.NewArchiveRepository(tx).DeleteByEditor(ctx, id); err != nil {
			return err
		}
		return repository.NewEditorRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.scheduleBlobCleanup(mediaURLs)
	return nil
}

// scheduleBlobCleanup queues background deletions for the given media
// URLs. Failures only log; the database rows are already gone.
func (s *EditorService) scheduleBlobCleanup(mediaURLs []string) {
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

const secretLinkCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// newSecretLink mints a link token: {type}-{random}-{unixMillis}.
func newSecretLink(editorType string) string {
	token := make([]byte, 8)
	if _, err := rand.Read(token); err != nil {
		return fmt.Sprintf("%s-%s-%d", editorType, uuid.NewString()[:8], time.Now().UnixMilli())
	}
	for i := range token {
		token[i] = secretLinkCharset[int(token[i])%len(secretLinkCharset)]
	}
	return fmt.Sprintf("%s-%s-%d", editorType, token, time.Now().UnixMilli())
}
