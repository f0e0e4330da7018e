package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackmyoffer/bff/internal/domain"
	"go.uber.org/zap"
)

func newTestStrategy(provider *fakeProvider, creator *fakeCreator) (*SessionBased, *fakeDirectoryRepo) {
	repo := newFakeDirectoryRepo()
	logger := zap.NewNop()
	directory := NewProfileDirectory(repo, creator, nil, nil, logger)
	validator := NewTokenValidator(provider, nil, logger)
	resolver := NewIdentityResolver(validator, provider, directory)
	return NewSessionBased(resolver, logger), repo
}

func TestSessionBased_Resolve(t *testing.T) {
	provider := &fakeProvider{
		live:  map[string]bool{"live": true, "no-userinfo": true},
		users: map[string]domain.UserInfo{"live": {Email: " Ada@Example.com", GivenName: "Ada"}},
	}

	t.Run("no session", func(t *testing.T) {
		strategy, _ := newTestStrategy(provider, &fakeCreator{})

		identity, err := strategy.Resolve(context.Background(), nil)
		require.NoError(t, err)
		unauth, ok := identity.(domain.Unauthenticated)
		require.True(t, ok)
		assert.False(t, unauth.HadSession)
	})

	t.Run("invalid token", func(t *testing.T) {
		strategy, repo := newTestStrategy(provider, &fakeCreator{})

		identity, err := strategy.Resolve(context.Background(), &domain.Session{AccessToken: "expired"})
		require.NoError(t, err)
		unauth, ok := identity.(domain.Unauthenticated)
		require.True(t, ok)
		assert.True(t, unauth.HadSession)
		assert.Equal(t, 0, repo.count())
	})

	t.Run("user info unavailable", func(t *testing.T) {
		strategy, _ := newTestStrategy(provider, &fakeCreator{})

		identity, err := strategy.Resolve(context.Background(), &domain.Session{AccessToken: "no-userinfo"})
		require.NoError(t, err)
		assert.IsType(t, domain.Unauthenticated{}, identity)
	})

	t.Run("valid token", func(t *testing.T) {
		strategy, repo := newTestStrategy(provider, &fakeCreator{})
		session := &domain.Session{State: "s", AccessToken: "live"}

		identity, err := strategy.Resolve(context.Background(), session)
		require.NoError(t, err)
		auth, ok := identity.(domain.Authenticated)
		require.True(t, ok)
		assert.Equal(t, "ada@example.com", auth.Email)
		assert.Equal(t, int64(101), auth.ProfileID)
		assert.Equal(t, *session, auth.Session)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("profile creation failure", func(t *testing.T) {
		strategy, _ := newTestStrategy(provider, &fakeCreator{err: errors.New("upstream down")})

		_, err := strategy.Resolve(context.Background(), &domain.Session{AccessToken: "live"})
		assert.ErrorIs(t, err, ErrProfileCreation)
	})
}

func TestIdentityResolver_ExtractProfileIDWithoutSession(t *testing.T) {
	provider := &fakeProvider{}
	resolver := NewIdentityResolver(NewTokenValidator(provider, nil, zap.NewNop()), provider, nil)

	_, err := resolver.ExtractProfileID(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int64(0), provider.introspected.Load())
}

func TestFixedDebugID_Resolve(t *testing.T) {
	strategy := FixedDebugID{ProfileID: 1, Email: "debug@localhost"}

	identity, err := strategy.Resolve(context.Background(), nil)
	require.NoError(t, err)

	auth, ok := identity.(domain.Authenticated)
	require.True(t, ok)
	assert.Equal(t, int64(1), auth.ProfileID)
	assert.Equal(t, "debug@localhost", auth.Email)
}
