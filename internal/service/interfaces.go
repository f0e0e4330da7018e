package service

import (
	"context"
	"time"

	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/upstream"
)

// IdentityProvider is the remote OAuth identity provider
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	// Introspect returns an error only for transport failures.
	Introspect(ctx context.Context, accessToken string) (bool, error)
	UserInfo(ctx context.Context, accessToken string) (*domain.UserInfo, error)
}

// ProfileCreator creates profiles in the feature service
type ProfileCreator interface {
	CreateProfile(ctx context.Context, profile dto.NewProfileRequest) (int64, error)
}

// UserDataClient is the part of the feature service used by export and delete
type UserDataClient interface {
	GetProfile(ctx context.Context, profileID int64) (*upstream.Response, error)
	ListEducations(ctx context.Context, profileID int64) (*upstream.Response, error)
	ListExperiences(ctx context.Context, profileID int64) (*upstream.Response, error)
	DeleteEducation(ctx context.Context, profileID, educationID int64) (*upstream.Response, error)
	DeleteExperience(ctx context.Context, profileID, experienceID int64) (*upstream.Response, error)
	DeleteProfile(ctx context.Context, profileID int64) (*upstream.Response, error)
}

// Locker serializes work on a key across processes
type Locker interface {
	// Acquire blocks until the lock is held or ctx is done.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// RevocationList remembers sessions ended by logout
type RevocationList interface {
	Revoke(ctx context.Context, accessToken string, ttl time.Duration) error
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
}

// IdentityStrategy turns the session of a request (nil when absent) into an Identity.
// An error means the identity could not be established for reasons other than the session.
type IdentityStrategy interface {
	Resolve(ctx context.Context, session *domain.Session) (domain.Identity, error)
}
