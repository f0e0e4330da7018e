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

const (
	dateLayout = "2006-01-02"

	// recordAttempts bounds retries after losing the first-insert race on user_streaks.
	recordAttempts = 3
)

var errStreakInsertRace = errors.New("streak row inserted concurrently")

// activityRepository implements ActivityRepository interface
type activityRepository struct {
	db *database.Postgres
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.Postgres) ActivityRepository {
	return &activityRepository{db: db}
}

// RecordActivity logs the day and advances the streak in one transaction. The streak row is
// locked with SELECT ... FOR UPDATE so concurrent calls for the same email serialize.
func (r *activityRepository) RecordActivity(ctx context.Context, email string, day time.Time) (int, error) {
	day = domain.CalendarDay(day)

	var err error
	for attempt := 0; attempt < recordAttempts; attempt++ {
		var streak int
		streak, err = r.recordActivityOnce(ctx, email, day)
		if err == nil {
			return streak, nil
		}
		if !errors.Is(err, errStreakInsertRace) {
			return 0, err
		}
	}

	return 0, fmt.Errorf("failed to record activity for %s: %w", email, err)
}

func (r *activityRepository) recordActivityOnce(ctx context.Context, email string, day time.Time) (int, error) {
	var streak int

	err := r.db.WithTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sql.Tx) error {
		// A duplicate day is a no-op.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_activity_logs (email, activity_date)
			VALUES ($1, $2)
			ON CONFLICT (email, activity_date) DO NOTHING
		`, email, day.Format(dateLayout))
		if err != nil {
			return fmt.Errorf("failed to insert activity log: %w", err)
		}

		current := domain.StreakRecord{Email: email}
		var prev *domain.StreakRecord

		err = tx.QueryRowContext(ctx, `
			SELECT current_streak, last_active_date
			FROM user_streaks
			WHERE email = $1
			FOR UPDATE
		`, email).Scan(&current.CurrentStreak, &current.LastActiveDate)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to get streak: %w", err)
		default:
			prev = &current
		}

		next, changed := domain.NextStreak(prev, email, day)
		streak = next.CurrentStreak
		if !changed {
			return nil
		}

		if prev == nil {
			result, err := tx.ExecContext(ctx, `
				INSERT INTO user_streaks (email, current_streak, last_active_date)
				VALUES ($1, $2, $3)
				ON CONFLICT (email) DO NOTHING
			`, email, next.CurrentStreak, next.LastActiveDate.Format(dateLayout))
			if err != nil {
				return fmt.Errorf("failed to insert streak: %w", err)
			}
			inserted, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if inserted == 0 {
				return errStreakInsertRace
			}
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE user_streaks
			SET current_streak = $2, last_active_date = $3
			WHERE email = $1
		`, email, next.CurrentStreak, next.LastActiveDate.Format(dateLayout))
		if err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return streak, nil
}

// GetStreak retrieves the streak record of an email
func (r *activityRepository) GetStreak(ctx context.Context, email string) (*domain.StreakRecord, error) {
	record := &domain.StreakRecord{Email: email}

	err := r.db.DB.QueryRowContext(ctx, `
		SELECT current_streak, last_active_date
		FROM user_streaks
		WHERE email = $1
	`, email).Scan(&record.CurrentStreak, &record.LastActiveDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("streak for %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	return record, nil
}

// DeleteByEmail removes all activity data of an email
func (r *activityRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_activity_logs WHERE email = $1`, email); err != nil {
			return fmt.Errorf("failed to delete activity logs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_streaks WHERE email = $1`, email); err != nil {
			return fmt.Errorf("failed to delete streak: %w", err)
		}
		return nil
	})
}
