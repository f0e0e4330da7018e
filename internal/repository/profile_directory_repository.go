package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/pkg/database"
)

// profileDirectoryRepository implements ProfileDirectoryRepository interface
type profileDirectoryRepository struct {
	db *database.Postgres
}

// NewProfileDirectoryRepository creates a new profile directory repository
func NewProfileDirectoryRepository(db *database.Postgres) ProfileDirectoryRepository {
	return &profileDirectoryRepository{db: db}
}

// GetByEmail retrieves the directory entry of an email
func (r *profileDirectoryRepository) GetByEmail(ctx context.Context, email string) (*domain.ProfileDirectoryEntry, error) {
	query := `
		SELECT email, profile_id, created_at
		FROM user_profiles
		WHERE email = $1
	`

	entry := &domain.ProfileDirectoryEntry{}
	err := r.db.DB.QueryRowContext(ctx, query, email).Scan(
		&entry.Email,
		&entry.ProfileID,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile directory entry for %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile directory entry: %w", err)
	}

	return entry, nil
}

// Create inserts a new directory entry. The primary key on email guarantees at most one
// row per email; a losing concurrent insert surfaces as ErrDuplicateEmail.
func (r *profileDirectoryRepository) Create(ctx context.Context, entry *domain.ProfileDirectoryEntry) error {
	query := `
		INSERT INTO user_profiles (email, profile_id, created_at)
		VALUES ($1, $2, $3)
	`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query, entry.Email, entry.ProfileID, entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile directory entry for %s: %w", entry.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create profile directory entry: %w", err)
	}

	return nil
}

// Delete removes the directory entry of an email
func (r *profileDirectoryRepository) Delete(ctx context.Context, email string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM user_profiles WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to delete profile directory entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("profile directory entry for %s not found: %w", email, ErrNotFound)
	}

	return nil
}
