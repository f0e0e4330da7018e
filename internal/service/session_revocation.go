package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/trackmyoffer/bff/pkg/database"
)

// SessionRevocationService keeps logged-out access tokens in Redis until their session expires
type SessionRevocationService struct {
	redis *database.Redis
}

// NewSessionRevocationService creates a new session revocation service
func NewSessionRevocationService(redis *database.Redis) *SessionRevocationService {
	return &SessionRevocationService{redis: redis}
}

// Revoke adds an access token to the revocation list
func (s *SessionRevocationService) Revoke(ctx context.Context, accessToken string, ttl time.Duration) error {
	err := s.redis.Client.Set(ctx, s.key(accessToken), "1", ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked checks if an access token is in the revocation list
func (s *SessionRevocationService) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	exists, err := s.redis.Client.Exists(ctx, s.key(accessToken)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return exists > 0, nil
}

// key hashes the token so raw tokens never reach Redis
func (s *SessionRevocationService) key(accessToken string) string {
	hash := sha256.Sum256([]byte(accessToken))
	return "revoked:session:" + hex.EncodeToString(hash[:])
}
