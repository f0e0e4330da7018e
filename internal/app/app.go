package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/config"
	"github.com/trackmyoffer/bff/internal/handler"
	"github.com/trackmyoffer/bff/internal/oauth"
	"github.com/trackmyoffer/bff/internal/repository"
	"github.com/trackmyoffer/bff/internal/service"
	"github.com/trackmyoffer/bff/internal/upstream"
	"github.com/trackmyoffer/bff/internal/utils"
	"go.uber.org/zap"
)

const (
	shutdownTimeout   = 5 * time.Second
	profileLockPrefix = "profile-directory"
)

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()
	metrics := infra.Metrics()
	httpClient := infra.HTTPClient()

	cookies, err := cookieOptions(cfg)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(infra.Postgres())

	provider := oauth.NewGoogleProvider(oauth.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.OAuth.CallbackURL(),
		AuthURL:      cfg.OAuth.AuthURL,
		TokenURL:     cfg.OAuth.TokenURL,
		TokenInfoURL: cfg.OAuth.TokenInfoURL,
		UserInfoURL:  cfg.OAuth.UserInfoURL,
	}, httpClient)
	featureClient := upstream.NewClient(cfg.Upstream.URL, httpClient, metrics, logger)

	revocations := service.NewSessionRevocationService(infra.Redis())
	// The lock outlives one profile creation at the configured upstream timeout.
	locker := service.NewRedisLocker(
		infra.Redis(),
		profileLockPrefix,
		2*cfg.Upstream.Timeout.Duration,
		cfg.Upstream.Timeout.Duration+2*time.Second,
		logger,
	)
	rateLimiter := service.NewRateLimiter(infra.Redis())

	validator := service.NewTokenValidator(provider, revocations, logger)
	directory := service.NewProfileDirectory(repos.ProfileDirectory, featureClient, locker, metrics, logger)
	resolver := service.NewIdentityResolver(validator, provider, directory)
	tracker := service.NewActivityTracker(repos.Activity, metrics)
	userData := service.NewUserDataService(featureClient, directory, tracker, logger)

	store := handler.NewSessionStore(
		utils.NewSessionCodec(cfg.Session.Secret, cfg.Session.TTL.Duration),
		cookies,
		logger,
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := NewRouter(cfg, RouterDeps{
		Store:          store,
		Strategy:       service.NewSessionBased(resolver, logger),
		Tracker:        tracker,
		Auth:           handler.NewAuthHandler(provider, resolver, store, revocations, cfg.FrontendURL, logger),
		Feature:        handler.NewFeatureHandler(featureClient, tracker, logger),
		User:           handler.NewUserHandler(userData, store, logger),
		RateLimiter:    rateLimiter,
		Health:         NewHealthChecker(infra).Handler,
		MetricsHandler: infra.MetricsHandler(),
		Metrics:        metrics,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

// cookieOptions derives the attributes of every cookie the BFF sets
func cookieOptions(cfg *config.Config) (handler.CookieOptions, error) {
	sameSite, err := cfg.Session.SameSiteMode()
	if err != nil {
		return handler.CookieOptions{}, err
	}

	return handler.CookieOptions{
		Secure:   cfg.Session.Secure,
		SameSite: sameSite,
		Domain:   cfg.CookieDomain,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.Bool("debug_routes", a.config.Debug.Routes),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// In-flight requests finish before their dependencies go away.
	if err := a.server.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Server shutdown failed", zap.Error(err))
		return errors.Join(err, a.infra.Shutdown(ctx))
	}

	if err := a.infra.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return fmt.Errorf("failed to release infrastructure: %w", err)
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
