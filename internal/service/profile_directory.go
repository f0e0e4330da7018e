package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/repository"
	"github.com/trackmyoffer/bff/pkg/observability"
	"go.uber.org/zap"
)

// ProfileDirectory maps emails to feature-service profile ids
type ProfileDirectory struct {
	repo    repository.ProfileDirectoryRepository
	creator ProfileCreator
	locker  Locker
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewProfileDirectory creates a new profile directory. locker may be nil; the unique key on
// email still keeps one row per email, but concurrent first requests may then create more
// than one upstream profile.
func NewProfileDirectory(
	repo repository.ProfileDirectoryRepository,
	creator ProfileCreator,
	locker Locker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ProfileDirectory {
	return &ProfileDirectory{
		repo:    repo,
		creator: creator,
		locker:  locker,
		metrics: metrics,
		logger:  logger,
	}
}

// GetOrCreateProfileID returns the profile id stored for email, creating a profile in the
// feature service the first time the email is seen. No transaction is held while the
// feature service is called.
func (d *ProfileDirectory) GetOrCreateProfileID(ctx context.Context, email string, info domain.UserInfo) (int64, error) {
	profileID, found, err := d.lookup(ctx, email)
	if err != nil || found {
		return profileID, err
	}

	if d.locker != nil {
		release, err := d.locker.Acquire(ctx, email)
		if err != nil {
			d.logger.Warn("profile creation lock unavailable", zap.String("email", email), zap.Error(err))
		} else {
			defer release()

			profileID, found, err = d.lookup(ctx, email)
			if err != nil || found {
				return profileID, err
			}
		}
	}

	profileID, err = d.creator.CreateProfile(ctx, dto.NewProfileRequest{
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Email:     email,
	})
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %v", ErrProfileCreation, email, err)
	}

	err = d.repo.Create(ctx, &domain.ProfileDirectoryEntry{Email: email, ProfileID: profileID})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost the race; the stored entry wins and our upstream profile is orphaned.
		d.logger.Warn("concurrent profile creation, keeping stored entry",
			zap.String("email", email),
			zap.Int64("discarded_profile_id", profileID),
		)
		entry, err := d.repo.GetByEmail(ctx, email)
		if err != nil {
			return 0, fmt.Errorf("failed to re-read profile directory entry: %w", err)
		}
		return entry.ProfileID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to store profile directory entry: %w", err)
	}

	if d.metrics != nil {
		d.metrics.ProfilesCreated.Add(ctx, 1)
	}
	d.logger.Info("profile created", zap.String("email", email), zap.Int64("profile_id", profileID))

	return profileID, nil
}

// Forget removes the directory entry of email. A missing entry is not an error.
func (d *ProfileDirectory) Forget(ctx context.Context, email string) error {
	err := d.repo.Delete(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (d *ProfileDirectory) lookup(ctx context.Context, email string) (int64, bool, error) {
	entry, err := d.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up profile directory: %w", err)
	}
	return entry.ProfileID, true, nil
}
