package repository

import (
	"context"
	"fmt"

	"content-portal-api/internal/models"
)

// ErrorLogRepository is the append-only store for pipeline failure events.
type ErrorLogRepository interface {
	// Insert appends one error log entry. Entries are never mutated.
	Insert(ctx context.Context, entry *models.ErrorLogEntry) error
	// ListRecent returns the most recent entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.ErrorLogEntry, error)
}

type errorLogRepo struct {
	db DBTX
}

// NewErrorLogRepository creates the error log repository.
func NewErrorLogRepository(db DBTX) ErrorLogRepository {
	return &errorLogRepo{db: db}
}

func (r *errorLogRepo) Insert(ctx context.Context, entry *models.ErrorLogEntry) error {
	query := `
		INSERT INTO error_logs (error_type, error_message, error_stack,
			file_name, file_size, editor_id, request_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		entry.ErrorType, entry.ErrorMessage, entry.ErrorStack,
		entry.FileName, entry.FileSize, entry.EditorID, entry.RequestID, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert error log entry: %w", err)
	}
	return nil
}

func (r *errorLogRepo) ListRecent(ctx context.Context, limit int) ([]*models.ErrorLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, error_type, error_message, error_stack,
			file_name, file_size, editor_id, request_id, details, created_at
		FROM error_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list error logs: %w", err)
	}
	defer rows.Close()

	var result []*models.ErrorLogEntry
	for rows.Next() {
		entry := &models.ErrorLogEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.ErrorType, &entry.ErrorMessage, &entry.ErrorStack,
			&entry.FileName, &entry.FileSize, &entry.EditorID, &entry.RequestID,
			&entry.Details, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan error log entry: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
