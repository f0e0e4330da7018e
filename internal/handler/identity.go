package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/service"
	"github.com/trackmyoffer/bff/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const identityKey = "identity"

// RouteFamily decides how an unauthenticated request is answered
type RouteFamily int

const (
	// APIRoutes answer 401 with {isAuthenticated:false}.
	APIRoutes RouteFamily = iota
	// PageRoutes redirect the browser to /login.
	PageRoutes
)

// LoginPath is where unauthenticated browsers are sent
const LoginPath = "/login"

// IdentityMiddleware resolves the caller through strategy and stores the Authenticated
// identity in the context. Unusable sessions are cleared from the client.
func IdentityMiddleware(
	store *SessionStore,
	strategy service.IdentityStrategy,
	family RouteFamily,
	metrics *observability.Metrics,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := store.Read(c)

		identity, err := strategy.Resolve(c.Request.Context(), session)
		if err != nil {
			logger.Error("failed to resolve identity", zap.String("path", c.Request.URL.Path), zap.Error(err))

			message := "Failed to resolve user"
			if errors.Is(err, service.ErrProfileCreation) {
				message = "Failed to create user profile"
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal server error",
				Message: message,
			})
			return
		}

		switch id := identity.(type) {
		case domain.Authenticated:
			c.Set(identityKey, id)
			c.Next()
		case domain.Unauthenticated:
			if metrics != nil {
				metrics.IdentityFailures.Add(c.Request.Context(), 1,
					metric.WithAttributes(attribute.Bool("had_session", id.HadSession)))
			}
			if id.HadSession || store.Present(c) {
				store.Clear(c)
			}
			rejectUnauthenticated(c, family)
		}
	}
}

func rejectUnauthenticated(c *gin.Context, family RouteFamily) {
	if family == PageRoutes {
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.AuthStatusResponse{IsAuthenticated: false})
}

// CurrentIdentity returns the identity stored by IdentityMiddleware
func CurrentIdentity(c *gin.Context) (domain.Authenticated, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return domain.Authenticated{}, false
	}
	identity, ok := value.(domain.Authenticated)
	return identity, ok
}

// mustIdentity is for handlers mounted behind IdentityMiddleware
func mustIdentity(c *gin.Context) (domain.Authenticated, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.AuthStatusResponse{IsAuthenticated: false})
	}
	return identity, ok
}
