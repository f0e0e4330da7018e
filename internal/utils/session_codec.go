package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/trackmyoffer/bff/internal/domain"
)

// ErrInvalidSession is returned for a cookie value that is malformed, tampered with or expired
var ErrInvalidSession = errors.New("invalid session")

type sessionClaims struct {
	State       string `json:"state"`
	AccessToken string `json:"accessToken"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies session cookie values (HS256)
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec creates a new session codec
func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the session lifetime
func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

// Encode serializes and signs a session
func (c *SessionCodec) Encode(session domain.Session) (string, error) {
	now := c.now()
	claims := sessionClaims{
		State:       session.State,
		AccessToken: session.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	return value, nil
}

// Decode verifies a signed value and returns the session it carries
func (c *SessionCodec) Decode(value string) (domain.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if !token.Valid || claims.AccessToken == "" {
		return domain.Session{}, ErrInvalidSession
	}

	return domain.Session{
		State:       claims.State,
		AccessToken: claims.AccessToken,
	}, nil
}
