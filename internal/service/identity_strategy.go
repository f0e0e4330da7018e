package service

import (
	"context"
	"errors"

	"github.com/trackmyoffer/bff/internal/domain"
	"go.uber.org/zap"
)

// SessionBased resolves identities from the session cookie through the identity provider
type SessionBased struct {
	resolver *IdentityResolver
	logger   *zap.Logger
}

// NewSessionBased creates the production identity strategy
func NewSessionBased(resolver *IdentityResolver, logger *zap.Logger) *SessionBased {
	return &SessionBased{resolver: resolver, logger: logger}
}

// Resolve implements IdentityStrategy
func (s *SessionBased) Resolve(ctx context.Context, session *domain.Session) (domain.Identity, error) {
	if session == nil {
		return domain.Unauthenticated{Reason: "no session"}, nil
	}

	identity, err := s.resolver.ExtractProfileID(ctx, session)
	if errors.Is(err, ErrUnauthenticated) {
		s.logger.Debug("session rejected", zap.Error(err))
		return domain.Unauthenticated{Reason: err.Error(), HadSession: true}, nil
	}
	if err != nil {
		return nil, err
	}

	return identity, nil
}

// FixedDebugID skips authentication and always yields the same profile. It backs the
// DEBUG route tree, which is only mounted when debug routes are enabled.
type FixedDebugID struct {
	ProfileID int64
	Email     string
}

// Resolve implements IdentityStrategy
func (f FixedDebugID) Resolve(_ context.Context, _ *domain.Session) (domain.Identity, error) {
	return domain.Authenticated{
		ProfileID: f.ProfileID,
		Email:     f.Email,
		User: domain.UserInfo{
			Email:         f.Email,
			VerifiedEmail: true,
			Name:          "Debug User",
		},
	}, nil
}
