package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trackmyoffer/bff/internal/repository"
	"github.com/trackmyoffer/bff/pkg/observability"
)

// ActivityTracker keeps the daily activity log and consecutive-day streaks
type ActivityTracker struct {
	repo    repository.ActivityRepository
	metrics *observability.Metrics
	now     func() time.Time
}

// NewActivityTracker creates a new activity tracker
func NewActivityTracker(repo repository.ActivityRepository, metrics *observability.Metrics) *ActivityTracker {
	return &ActivityTracker{
		repo:    repo,
		metrics: metrics,
		now:     time.Now,
	}
}

// RecordActivity records activity for today and returns the streak after it
func (t *ActivityTracker) RecordActivity(ctx context.Context, email string) (int, error) {
	return t.RecordActivityOn(ctx, email, t.now())
}

// RecordActivityOn records activity for the calendar day of day
func (t *ActivityTracker) RecordActivityOn(ctx context.Context, email string, day time.Time) (int, error) {
	streak, err := t.repo.RecordActivity(ctx, email, day)
	if err != nil {
		return 0, fmt.Errorf("failed to record activity: %w", err)
	}

	if t.metrics != nil {
		t.metrics.ActivityRecorded.Add(ctx, 1)
	}

	return streak, nil
}

// GetCurrentStreak returns the stored streak, or 0 when the email has no activity
func (t *ActivityTracker) GetCurrentStreak(ctx context.Context, email string) (int, error) {
	record, err := t.repo.GetStreak(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get streak: %w", err)
	}
	return record.CurrentStreak, nil
}

// Forget removes all activity data of email
func (t *ActivityTracker) Forget(ctx context.Context, email string) error {
	return t.repo.DeleteByEmail(ctx, email)
}
