package repository

import (
	"context"
	"time"

	"github.com/trackmyoffer/bff/internal/domain"
)

// ProfileDirectoryRepository stores the email -> upstream profile id mapping
type ProfileDirectoryRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.ProfileDirectoryEntry, error)
	// Create fails with ErrDuplicateEmail when the email is already mapped.
	Create(ctx context.Context, entry *domain.ProfileDirectoryEntry) error
	Delete(ctx context.Context, email string) error
}

// ActivityRepository stores daily activity and the derived streaks
type ActivityRepository interface {
	// RecordActivity logs activity for day and returns the streak after it.
	RecordActivity(ctx context.Context, email string, day time.Time) (int, error)
	GetStreak(ctx context.Context, email string) (*domain.StreakRecord, error)
	DeleteByEmail(ctx context.Context, email string) error
}
