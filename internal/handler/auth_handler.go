package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/service"
	"go.uber.org/zap"
)

// HomePath is the landing path after a successful login
const HomePath = "/home"

// AuthHandler handles the OAuth login flow and session lifecycle
type AuthHandler struct {
	provider    service.IdentityProvider
	resolver    *service.IdentityResolver
	store       *SessionStore
	revocations service.RevocationList
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler. revocations may be nil.
func NewAuthHandler(
	provider service.IdentityProvider,
	resolver *service.IdentityResolver,
	store *SessionStore,
	revocations service.RevocationList,
	frontendURL string,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		resolver:    resolver,
		store:       store,
		revocations: revocations,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Login starts the authorization-code flow
// @Summary Start Google login
// @Tags auth
// @Success 302
// @Router /login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	h.store.SetState(c, state)
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// Callback completes the authorization-code flow and creates the session
// @Summary OAuth callback
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 302
// @Router /callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	expected := h.store.TakeState(c)
	state := c.Query("state")
	code := c.Query("code")

	if errParam := c.Query("error"); errParam != "" {
		h.logger.Info("login declined by identity provider", zap.String("error", errParam))
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	if code == "" || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		h.logger.Warn("rejecting oauth callback", zap.Bool("has_code", code != ""), zap.Bool("state_matches", state != "" && state == expected))
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	accessToken, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("failed to exchange authorization code", zap.Error(err))
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	if err := h.store.Create(c, domain.Session{State: state, AccessToken: accessToken}); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	c.Redirect(http.StatusFound, HomePath)
}

// Logout clears the session
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LogoutResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if !h.endSession(c) {
		c.JSON(http.StatusOK, dto.LogoutResponse{Status: dto.LogoutStatusAlreadyLoggedOut})
		return
	}
	c.JSON(http.StatusOK, dto.LogoutResponse{Status: dto.LogoutStatusSuccess})
}

// LogoutRedirect clears the session and sends the browser to /login
func (h *AuthHandler) LogoutRedirect(c *gin.Context) {
	h.endSession(c)
	c.Redirect(http.StatusFound, LoginPath)
}

// endSession revokes and clears the session; it reports whether there was one
func (h *AuthHandler) endSession(c *gin.Context) bool {
	if !h.store.Present(c) {
		return false
	}

	if session := h.store.Read(c); session != nil && h.revocations != nil {
		if err := h.revocations.Revoke(c.Request.Context(), session.AccessToken, h.store.codec.TTL()); err != nil {
			h.logger.Warn("failed to revoke session", zap.Error(err))
		}
	}

	h.store.Clear(c)
	return true
}

// Home sends an authenticated browser to the web app
func (h *AuthHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, h.frontendURL)
}

// Status reports whether the caller holds a live session. A request without a session is
// answered 200; a presented session that fails validation is cleared and answered 401.
// @Summary Authentication status
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthStatusResponse
// @Failure 401 {object} dto.AuthStatusResponse
// @Router /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	session := h.store.Read(c)
	if session == nil {
		if h.store.Present(c) {
			h.store.Clear(c)
			c.JSON(http.StatusUnauthorized, dto.AuthStatusResponse{IsAuthenticated: false})
			return
		}
		c.JSON(http.StatusOK, dto.AuthStatusResponse{IsAuthenticated: false})
		return
	}

	info, err := h.resolver.Resolve(c.Request.Context(), *session)
	if err != nil {
		h.logger.Debug("session rejected", zap.Error(err))
		h.store.Clear(c)
		c.JSON(http.StatusUnauthorized, dto.AuthStatusResponse{IsAuthenticated: false})
		return
	}

	c.JSON(http.StatusOK, dto.AuthStatusResponse{IsAuthenticated: true, UserData: info})
}
