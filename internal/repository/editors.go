package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"content-portal-api/internal/models"
)

// EditorRepository is the CRUD interface for the editors table.
type EditorRepository interface {
	// Create inserts a new editor.
	Create(ctx context.Context, editor *models.Editor) error
	// GetByID returns an editor by UUID.
	GetByID(ctx context.Context, id string) (*models.Editor, error)
	// GetBySecretLink resolves an editor from their secret link.
	GetBySecretLink(ctx context.Context, secretLink string) (*models.Editor, error)
	// List returns all editors, newest first.
	List(ctx context.Context) ([]*models.Editor, error)
	// Delete removes an editor. Callers are expected to have archived or
	// removed the editor's uploads first.
	Delete(ctx context.Context, id string) error
}

type editorRepo struct {
	db DBTX
}

// NewEditorRepository creates the editors repository.
func NewEditorRepository(db DBTX) EditorRepository {
	return &editorRepo{db: db}
}

const editorColumns = `id, name, type, description, secret_link, created_at`

func scanEditor(row pgx.Row) (*models.Editor, error) {
	editor := &models.Editor{}
	err := row.Scan(
		&editor.ID, &editor.Name, &editor.Type, &editor.Description,
		&editor.SecretLink, &editor.CreatedAt,
	)
	return editor, err
}

func (r *editorRepo) Create(ctx context.Context, editor *models.Editor) error {
	query := `
		INSERT INTO editors (id, name, type, description, secret_link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		editor.ID, editor.Name, editor.Type, editor.Description, editor.SecretLink,
	).Scan(&editor.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: an editor with this secret link already exists", ErrConflict)
		}
		return fmt.Errorf("failed to create editor: %w", err)
	}
	return nil
}

func (r *editorRepo) GetByID(ctx context.Context, id string) (*models.Editor, error) {
	query := fmt.Sprintf(`SELECT %s FROM editors WHERE id = $1`, editorColumns)
	editor, err := scanEditor(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get editor: %w", err)
	}
	return editor, nil
}

func (r *editorRepo) GetBySecretLink(ctx context.Context, secretLink string) (*models.Editor, error) {
	query := fmt.Sprintf(`SELECT %s FROM editors WHERE secret_link = $1`, editorColumns)
	editor, err := scanEditor(r.db.QueryRow(ctx, query, secretLink))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get editor by secret link: %w", err)
	}
	return editor, nil
}

func (r *editorRepo) List(ctx context.Context) ([]*models.Editor, error) {
	query := fmt.Sprintf(`SELECT %s FROM editors ORDER BY created_at DESC`, editorColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list editors: %w", err)
	}
	defer rows.Close()

	var result []*models.Editor
	for rows.Next() {
		editor := &models.Editor{}
		if err := rows.Scan(
			&editor.ID, &editor.Name, &editor.Type, &editor.Description,
			&editor.SecretLink, &editor.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan editor: %w", err)
		}
		result = append(result, editor)
	}
	return result, rows.Err()
}

func (r *editorRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM editors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete editor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
