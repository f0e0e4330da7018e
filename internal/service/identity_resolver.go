package service

import (
	"context"
	"fmt"

	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/utils"
)

// IdentityResolver turns a session into the caller's user info and profile id
type IdentityResolver struct {
	validator *TokenValidator
	provider  IdentityProvider
	directory *ProfileDirectory
}

// NewIdentityResolver creates a new identity resolver
func NewIdentityResolver(validator *TokenValidator, provider IdentityProvider, directory *ProfileDirectory) *IdentityResolver {
	return &IdentityResolver{
		validator: validator,
		provider:  provider,
		directory: directory,
	}
}

// Resolve validates the session and fetches fresh user info. It fails with
// ErrUnauthenticated when the token is not live or the user info is unavailable.
func (r *IdentityResolver) Resolve(ctx context.Context, session domain.Session) (*domain.UserInfo, error) {
	if !r.validator.IsValid(ctx, session) {
		return nil, fmt.Errorf("token rejected: %w", ErrUnauthenticated)
	}

	info, err := r.provider.UserInfo(ctx, session.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	key, err := utils.DirectoryKey(info.Email)
	if err != nil {
		return nil, fmt.Errorf("identity provider returned %q: %w", info.Email, ErrUnauthenticated)
	}
	info.Email = key

	return info, nil
}

// ExtractProfileID resolves the session and maps the email to a profile id, creating the
// profile on first sight. A nil session fails with ErrUnauthenticated.
func (r *IdentityResolver) ExtractProfileID(ctx context.Context, session *domain.Session) (domain.Authenticated, error) {
	if session == nil {
		return domain.Authenticated{}, ErrUnauthenticated
	}

	info, err := r.Resolve(ctx, *session)
	if err != nil {
		return domain.Authenticated{}, err
	}

	profileID, err := r.directory.GetOrCreateProfileID(ctx, info.Email, *info)
	if err != nil {
		return domain.Authenticated{}, err
	}

	return domain.Authenticated{
		ProfileID: profileID,
		Email:     info.Email,
		User:      *info,
		Session:   *session,
	}, nil
}
