package repository

import (
	"context"
	"fmt"
	"time"

	"content-portal-api/internal/models"
)

// ArchiveRepository manages the append-only archive of retired uploads.
type ArchiveRepository interface {
	// ArchiveCreatedSince copies uploads created at or after the given time
	// into the archive with the given reason. Run inside a transaction
	// together with UploadRepository.DeleteCreatedSince.
	ArchiveCreatedSince(ctx context.Context, since time.Time, reason string) (int64, error)
	// ArchiveOlderThan copies uploads created before the given time into
	// the archive with the given reason.
	ArchiveOlderThan(ctx context.Context, cutoff time.Time, reason string) (int64, error)
	// List returns archive entries joined with their editor, newest first.
	List(ctx context.Context) ([]*models.ArchiveEntryWithEditor, error)
	// DeleteByIDs removes the selected archive entries.
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	// DeleteByEditor removes all archive entries of an editor.
	DeleteByEditor(ctx context.Context, editorID string) error
}

type archiveRepo struct {
	db DBTX
}

// NewArchiveRepository creates the archive repository.
func NewArchiveRepository(db DBTX) ArchiveRepository {
	return &archiveRepo{db: db}
}

const archiveFromUploads = `
	INSERT INTO archive (editor_id, file_name, caption, media_url, media_type, created_at, archive_reason)
	SELECT editor_id, file_name, caption, media_url, media_type, created_at, $2
	FROM uploads`

func (r *archiveRepo) ArchiveCreatedSince(ctx context.Context, since time.Time, reason string) (int64, error) {
	tag, err := r.db.Exec(ctx, archiveFromUploads+` WHERE created_at >= $1`, since, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to archive recent uploads: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *archiveRepo) ArchiveOlderThan(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	tag, err := r.db.Exec(ctx, archiveFromUploads+` WHERE created_at < $1`, cutoff, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to archive old uploads: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *archiveRepo) List(ctx context.Context) ([]*models.ArchiveEntryWithEditor, error) {
	query := `
		SELECT a.id, a.editor_id, a.file_name, a.caption, a.media_url, a.media_type,
			a.created_at, a.archive_reason, a.archived_at,
			COALESCE(e.name, 'deleted editor'), COALESCE(e.type, '')
		FROM archive a
		LEFT JOIN editors e ON e.id = a.editor_id
		ORDER BY a.archived_at DESC, a.id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	defer rows.Close()

	var result []*models.ArchiveEntryWithEditor
	for rows.Next() {
		entry := &models.ArchiveEntryWithEditor{}
		if err := rows.Scan(
			&entry.ID, &entry.EditorID, &entry.FileName, &entry.Caption,
			&entry.MediaURL, &entry.MediaType, &entry.CreatedAt,
			&entry.ArchiveReason, &entry.ArchivedAt,
			&entry.EditorName, &entry.EditorType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan archive entry: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *archiveRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM archive WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete archive entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *archiveRepo) DeleteByEditor(ctx context.Context, editorID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM archive WHERE editor_id = $1`, editorID); err != nil {
		return fmt.Errorf("failed to delete editor archive entries: %w", err)
	}
	return nil
}
