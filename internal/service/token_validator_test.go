package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trackmyoffer/bff/internal/domain"
	"go.uber.org/zap"
)

func TestTokenValidator_IsValid(t *testing.T) {
	tests := []struct {
		name        string
		provider    *fakeProvider
		revocations *fakeRevocations
		token       string
		want        bool
	}{
		{
			name:     "live token",
			provider: &fakeProvider{live: map[string]bool{"live": true}},
			token:    "live",
			want:     true,
		},
		{
			name:     "expired token",
			provider: &fakeProvider{live: map[string]bool{}},
			token:    "ya29.expired",
			want:     false,
		},
		{
			name:     "network failure on well-formed token",
			provider: &fakeProvider{introspectErr: errors.New("dial tcp: i/o timeout")},
			token:    "ya29.a0AfH6SMB",
			want:     false,
		},
		{
			name:     "network failure on malformed token",
			provider: &fakeProvider{introspectErr: errors.New("connection reset")},
			token:    "%%%not a token",
			want:     false,
		},
		{
			name:     "empty token",
			provider: &fakeProvider{live: map[string]bool{"": true}},
			token:    "",
			want:     false,
		},
		{
			name:        "revoked token",
			provider:    &fakeProvider{live: map[string]bool{"live": true}},
			revocations: &fakeRevocations{revoked: map[string]bool{"live": true}},
			token:       "live",
			want:        false,
		},
		{
			name:        "revocation lookup failure falls back to introspection",
			provider:    &fakeProvider{live: map[string]bool{"live": true}},
			revocations: &fakeRevocations{err: errors.New("redis down")},
			token:       "live",
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var revocations RevocationList
			if tt.revocations != nil {
				revocations = tt.revocations
			}
			validator := NewTokenValidator(tt.provider, revocations, zap.NewNop())

			got := validator.IsValid(context.Background(), domain.Session{State: "s", AccessToken: tt.token})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenValidator_NoCaching(t *testing.T) {
	provider := &fakeProvider{live: map[string]bool{"live": true}}
	validator := NewTokenValidator(provider, nil, zap.NewNop())
	session := domain.Session{AccessToken: "live"}

	for i := 0; i < 3; i++ {
		assert.True(t, validator.IsValid(context.Background(), session))
	}
	assert.Equal(t, int64(3), provider.introspected.Load())
}
