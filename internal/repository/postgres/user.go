package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/google/uuid"
)

// UserRepository implements domain.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertByEmail creates the user on first login and stamps last_login_at
// on every verified OTP.
func (r *UserRepository) UpsertByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, created_at, last_login_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (email) DO UPDATE SET last_login_at = EXCLUDED.last_login_at
		RETURNING id, email, created_at, last_login_at
	`

	now := time.Now()
	var user domain.User
	err := r.db.Pool.QueryRow(ctx, query, uuid.New(), email, now).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, created_at, last_login_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
