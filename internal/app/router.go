package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/config"
	"github.com/trackmyoffer/bff/internal/handler"
	"github.com/trackmyoffer/bff/internal/service"
	"github.com/trackmyoffer/bff/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RouterDeps is everything the HTTP surface is built from
type RouterDeps struct {
	Store    *handler.SessionStore
	Strategy service.IdentityStrategy
	Tracker  *service.ActivityTracker

	Auth    *handler.AuthHandler
	Feature *handler.FeatureHandler
	User    *handler.UserHandler

	// RateLimiter is optional; nil disables rate limiting of the AI routes.
	RateLimiter *service.RateLimiter

	Health         gin.HandlerFunc
	MetricsHandler http.Handler
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewRouter builds the gin engine. The DEBUG feature tree is only registered when debug
// routes are enabled; otherwise its paths do not exist.
func NewRouter(cfg *config.Config, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.LoggerMiddleware(deps.Logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	router.GET("/metrics", observability.PrometheusHandler(deps.MetricsHandler))
	if deps.Health != nil {
		router.GET("/health", deps.Health)
	}
	router.GET("/v0/hello", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello from TrackMyOffer")
	})

	router.GET("/login", deps.Auth.Login)
	router.GET("/callback", deps.Auth.Callback)
	router.POST("/logout", deps.Auth.Logout)
	router.GET("/logout", deps.Auth.LogoutRedirect)
	router.GET("/auth/status", deps.Auth.Status)

	pageIdentity := handler.IdentityMiddleware(deps.Store, deps.Strategy, handler.PageRoutes, deps.Metrics, deps.Logger)
	activity := handler.ActivityMiddleware(deps.Tracker, deps.Logger)

	router.GET(handler.HomePath, pageIdentity, activity, deps.Auth.Home)

	user := router.Group("/user", pageIdentity)
	{
		user.GET("/export", deps.User.Export)
		user.DELETE("/delete", deps.User.Delete)
	}

	features := router.Group("/features/v0")
	if cfg.Debug.Routes {
		debugStrategy := service.FixedDebugID{ProfileID: cfg.Debug.ProfileID, Email: cfg.Debug.Email}
		deps.Logger.Warn("DEBUG feature routes enabled", zap.Int64("profile_id", cfg.Debug.ProfileID))

		debug := features.Group("/DEBUG",
			handler.IdentityMiddleware(deps.Store, debugStrategy, handler.APIRoutes, deps.Metrics, deps.Logger))
		setupFeatureRoutes(debug, cfg, deps)
	}

	authenticated := features.Group("",
		handler.IdentityMiddleware(deps.Store, deps.Strategy, handler.APIRoutes, deps.Metrics, deps.Logger))
	setupFeatureRoutes(authenticated, cfg, deps)

	return router
}

// setupFeatureRoutes registers the feature routes once per identity strategy
func setupFeatureRoutes(group *gin.RouterGroup, cfg *config.Config, deps RouterDeps) {
	h := deps.Feature

	group.GET("/profile", h.GetProfile)
	group.POST("/profile", h.SaveProfile)

	group.GET("/profile/education", h.ListEducations)
	group.POST("/profile/education", h.AddEducation)
	group.DELETE("/profile/education", h.DeleteEducation)

	group.GET("/profile/experience", h.ListExperiences)
	group.POST("/profile/experience", h.AddExperience)
	group.DELETE("/profile/experience", h.DeleteExperience)

	group.GET("/streak", h.Streak)

	ai := []gin.HandlerFunc{}
	if deps.RateLimiter != nil {
		ai = append(ai, handler.RateLimitMiddleware(
			deps.RateLimiter,
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window.Duration,
			handler.ProfileKey,
			deps.Metrics,
			deps.Logger,
		))
	}
	ai = append(ai, handler.ActivityMiddleware(deps.Tracker, deps.Logger))

	group.POST("/build-cv", append(ai, h.BuildCV)...)
	group.POST("/match-position", append(ai, h.MatchPosition)...)
	group.POST("/cover-letter", append(ai, h.CoverLetter)...)
	group.POST("/analyze-gaps", append(ai, h.AnalyzeGaps)...)
}
