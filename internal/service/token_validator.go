package service

import (
	"context"

	"github.com/trackmyoffer/bff/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator checks access tokens against the identity provider on every call
type TokenValidator struct {
	provider    IdentityProvider
	revocations RevocationList
	logger      *zap.Logger
}

// NewTokenValidator creates a new token validator. revocations may be nil.
func NewTokenValidator(provider IdentityProvider, revocations RevocationList, logger *zap.Logger) *TokenValidator {
	return &TokenValidator{
		provider:    provider,
		revocations: revocations,
		logger:      logger,
	}
}

// IsValid reports whether the session's access token is live. Every failure, including
// transport errors and timeouts, yields false.
func (v *TokenValidator) IsValid(ctx context.Context, session domain.Session) bool {
	if session.IsZero() {
		return false
	}

	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(ctx, session.AccessToken)
		if err != nil {
			v.logger.Warn("failed to check session revocation", zap.Error(err))
		} else if revoked {
			return false
		}
	}

	valid, err := v.provider.Introspect(ctx, session.AccessToken)
	if err != nil {
		v.logger.Warn("token introspection failed", zap.Error(err))
		return false
	}

	return valid
}
