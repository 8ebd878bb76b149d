package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"content-portal-api/internal/models"
)

// UploadRepository is the CRUD interface for the uploads table.
type UploadRepository interface {
	// Create inserts a new upload record.
	Create(ctx context.Context, upload *models.Upload) error
	// GetByID returns an upload by UUID.
	GetByID(ctx context.Context, id string) (*models.Upload, error)
	// List returns all uploads joined with their editor, newest first.
	// mediaType filters by type when non-nil.
	List(ctx context.Context, mediaType *string) ([]*models.UploadWithEditor, error)
	// ListByEditor returns one editor's uploads, newest first.
	ListByEditor(ctx context.Context, editorID string) ([]*models.Upload, error)
	// Delete removes a single upload.
	Delete(ctx context.Context, id string) error
	// DeleteByEditor removes all uploads of an editor and returns their
	// media and thumbnail URLs for blob cleanup.
	DeleteByEditor(ctx context.Context, editorID string) ([]string, error)
	// DeleteCreatedSince removes uploads created at or after the given time.
	DeleteCreatedSince(ctx context.Context, since time.Time) (int64, error)
	// DeleteOlderThan removes uploads created before the given time.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type uploadRepo struct {
	db DBTX
}

// NewUploadRepository creates the uploads repository.
func NewUploadRepository(db DBTX) UploadRepository {
	return &uploadRepo{db: db}
}

const uploadColumns = `id, editor_id, file_name, caption, media_url, media_type, thumbnail_url, created_at`

func scanUpload(row pgx.Row) (*models.Upload, error) {
	upload := &models.Upload{}
	err := row.Scan(
		&upload.ID, &upload.EditorID, &upload.FileName, &upload.Caption,
		&upload.MediaURL, &upload.MediaType, &upload.ThumbnailURL, &upload.CreatedAt,
	)
	return upload, err
}

func (r *uploadRepo) Create(ctx context.Context, upload *models.Upload) error {
	query := `
		INSERT INTO uploads (id, editor_id, file_name, caption, media_url, media_type, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		upload.ID, upload.EditorID, upload.FileName, upload.Caption,
		upload.MediaURL, upload.MediaType, upload.ThumbnailURL,
	).Scan(&upload.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: upload already recorded", ErrConflict)
		}
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (r *uploadRepo) GetByID(ctx context.Context, id string) (*models.Upload, error) {
	query := fmt.Sprintf(`SELECT %s FROM uploads WHERE id = $1`, uploadColumns)
	upload, err := scanUpload(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return upload, nil
}

func (r *uploadRepo) List(ctx context.Context, mediaType *string) ([]*models.UploadWithEditor, error) {
	query := `
		SELECT u.id, u.editor_id, u.file_name, u.caption, u.media_url, u.media_type,
			u.thumbnail_url, u.created_at, e.name, e.type
		FROM uploads u
		JOIN editors e ON e.id = u.editor_id`

	var args []any
	if mediaType != nil {
		query += ` WHERE u.media_type = $1`
		args = append(args, *mediaType)
	}
	query += ` ORDER BY u.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadWithEditor
	for rows.Next() {
		item := &models.UploadWithEditor{}
		if err := rows.Scan(
			&item.ID, &item.EditorID, &item.FileName, &item.Caption,
			&item.MediaURL, &item.MediaType, &item.ThumbnailURL, &item.CreatedAt,
			&item.EditorName, &item.EditorType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *uploadRepo) ListByEditor(ctx context.Context, editorID string) ([]*models.Upload, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM uploads
		WHERE editor_id = $1
		ORDER BY created_at DESC`, uploadColumns)

	rows, err := r.db.Query(ctx, query, editorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list editor uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.Upload
	for rows.Next() {
		upload := &models.Upload{}
		if err := rows.Scan(
			&upload.ID, &upload.EditorID, &upload.FileName, &upload.Caption,
			&upload.MediaURL, &upload.MediaType, &upload.ThumbnailURL, &upload.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		result = append(result, upload)
	}
	return result, rows.Err()
}

func (r *uploadRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *uploadRepo) DeleteByEditor(ctx context.Context, editorID string) ([]string, error) {
	query := `DELETE FROM uploads WHERE editor_id = $1 RETURNING media_url, thumbnail_url`

	rows, err := r.db.Query(ctx, query, editorID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete editor uploads: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		var thumbnail *string
		if err := rows.Scan(&url, &thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan deleted upload: %w", err)
		}
		urls = append(urls, url)
		if thumbnail != nil && *thumbnail != "" {
			urls = append(urls, *thumbnail)
		}
	}
	return urls, rows.Err()
}

func (r *uploadRepo) DeleteCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM uploads WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to delete recent uploads: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *uploadRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM uploads WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old uploads: %w", err)
	}
	return tag.RowsAffected(), nil
}
