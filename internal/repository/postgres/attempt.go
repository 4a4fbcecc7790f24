package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/google/uuid"
)

// AttemptRepository implements domain.AttemptRepository
type AttemptRepository struct {
	db *DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create inserts a new attempt
func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.Attempt) error {
	query := `
		INSERT INTO assist_attempts (id, user_id, mode, question, code, sql, valid, provider, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.Mode,
		attempt.Question,
		attempt.Code,
		attempt.SQL,
		attempt.Valid,
		attempt.Provider,
		attempt.Model,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// ListByUser retrieves the most recent attempts for a user
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error) {
	query := `
		SELECT id, user_id, mode, question, code, sql, valid, provider, model, created_at
		FROM assist_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Mode,
			&a.Question,
			&a.Code,
			&a.SQL,
			&a.Valid,
			&a.Provider,
			&a.Model,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}
