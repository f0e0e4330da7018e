package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/utils"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie holding the signed session
const SessionCookieName = "user_session"

// CookieOptions are the attributes shared by every cookie the BFF sets
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// SessionStore keeps the session in a signed, httponly cookie. Nothing is stored server-side.
type SessionStore struct {
	codec   *utils.SessionCodec
	options CookieOptions
	logger  *zap.Logger
}

// NewSessionStore creates a new session store
func NewSessionStore(codec *utils.SessionCodec, options CookieOptions, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		codec:   codec,
		options: options,
		logger:  logger,
	}
}

// Create signs session and sets it as the session cookie
func (s *SessionStore) Create(c *gin.Context, session domain.Session) error {
	value, err := s.codec.Encode(session)
	if err != nil {
		return err
	}

	s.setCookie(c, SessionCookieName, value, int(s.codec.TTL().Seconds()))
	return nil
}

// Read returns the session of the request, or nil when the cookie is absent, malformed,
// expired or carries a bad signature
func (s *SessionStore) Read(c *gin.Context) *domain.Session {
	value, err := c.Cookie(SessionCookieName)
	if err != nil || value == "" {
		return nil
	}

	session, err := s.codec.Decode(value)
	if err != nil {
		s.logger.Debug("discarding session cookie", zap.Error(err))
		return nil
	}

	return &session
}

// Present reports whether the request carries a session cookie, valid or not
func (s *SessionStore) Present(c *gin.Context) bool {
	_, err := c.Cookie(SessionCookieName)
	return err == nil
}

// Clear expires the session cookie. Clearing an absent session is a no-op for the client.
func (s *SessionStore) Clear(c *gin.Context) {
	s.setCookie(c, SessionCookieName, "", -1)
}

func (s *SessionStore) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(s.options.SameSite)
	c.SetCookie(name, value, maxAge, "/", s.options.Domain, s.options.Secure, true)
}

const (
	// StateCookieName carries the OAuth state between /login and /callback
	StateCookieName = "oauth_state"
	stateCookieTTL  = 10 * 60
)

// SetState remembers the OAuth state of a login attempt
func (s *SessionStore) SetState(c *gin.Context, state string) {
	s.setCookie(c, StateCookieName, state, stateCookieTTL)
}

// TakeState returns the remembered OAuth state and clears it
func (s *SessionStore) TakeState(c *gin.Context) string {
	state, err := c.Cookie(StateCookieName)
	if err != nil {
		return ""
	}
	s.setCookie(c, StateCookieName, "", -1)
	return state
}
