package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

const minSessionSecretLength = 32

type Config struct {
	Server    ServerConfig    `env:",prefix=SERVER_"`
	Postgres  PostgresConfig  `env:",prefix=POSTGRES_"`
	Redis     RedisConfig     `env:",prefix=REDIS_"`
	OAuth     OAuthConfig     `env:",prefix=OAUTH_"`
	Session   SessionConfig   `env:",prefix=SESSION_"`
	Upstream  UpstreamConfig  `env:",prefix=UPSTREAM_"`
	Debug     DebugConfig     `env:",prefix=DEBUG_"`
	RateLimit RateLimitConfig `env:",prefix=RATE_LIMIT_"`
	CORS      CORSConfig      `env:",prefix=CORS_"`
	// CookieDomain scopes the session cookie; empty means the host of the request.
	CookieDomain string `env:"COOKIE_DOMAIN"`
	// FrontendURL is where /home sends an authenticated browser.
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:5000"`
	Env         string `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host            string   `env:"HOST,default=localhost"`
	Port            string   `env:"PORT,default=5432"`
	User            string   `env:"USER,default=utility_user"`
	Password        string   `env:"PASSWORD,default=utility_password"`
	DBName          string   `env:"DB,default=utility_db"`
	SSLMode         string   `env:"SSLMODE,default=disable"`
	MaxOpenConns    int      `env:"MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int      `env:"MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime Duration `env:"CONN_MAX_LIFETIME,default=30m"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`
	// RedirectBaseURL is the public origin of this service; the callback is served under it.
	RedirectBaseURL string `env:"REDIRECT_BASE_URL,default=http://localhost:8080"`
	AuthURL         string `env:"AUTH_URL,default=https://accounts.google.com/o/oauth2/auth"`
	TokenURL        string `env:"TOKEN_URL,default=https://accounts.google.com/o/oauth2/token"`
	TokenInfoURL    string `env:"TOKENINFO_URL,default=https://oauth2.googleapis.com/tokeninfo"`
	UserInfoURL     string `env:"USERINFO_URL,default=https://www.googleapis.com/oauth2/v2/userinfo"`
}

type SessionConfig struct {
	Secret   string   `env:"SECRET,required"`
	TTL      Duration `env:"TTL,default=1h"`
	Secure   bool     `env:"SECURE,default=true"`
	SameSite string   `env:"SAME_SITE,default=none"`
}

type UpstreamConfig struct {
	URL     string   `env:"URL,default=http://localhost:8081"`
	Timeout Duration `env:"TIMEOUT,default=10s"`
}

type DebugConfig struct {
	Routes    bool   `env:"ROUTES,default=false"`
	ProfileID int64  `env:"PROFILE_ID,default=1"`
	Email     string `env:"EMAIL,default=debug@localhost"`
}

type RateLimitConfig struct {
	Requests int      `env:"REQUESTS,default=30"`
	Window   Duration `env:"WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:5000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization,Accept"`
}

// Address returns the listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL used by the migrator
func (p PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// CallbackURL returns the OAuth redirect URI registered with the identity provider
func (o OAuthConfig) CallbackURL() string {
	return strings.TrimRight(o.RedirectBaseURL, "/") + "/callback"
}

// SameSiteMode maps the configured SameSite name to its http constant
func (s SessionConfig) SameSiteMode() (http.SameSite, error) {
	switch strings.ToLower(s.SameSite) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("unknown SameSite mode %q", s.SameSite)
	}
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var config Config

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &config,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if len(c.Session.Secret) < minSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters long", minSessionSecretLength)
	}

	mode, err := c.Session.SameSiteMode()
	if err != nil {
		return err
	}
	// Browsers drop SameSite=None cookies that are not Secure.
	if mode == http.SameSiteNoneMode && !c.Session.Secure {
		return errors.New("SESSION_SAME_SITE=none requires SESSION_SECURE=true")
	}

	if c.Upstream.Timeout.Duration <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}

	if c.Debug.Routes && c.Env == "production" {
		return errors.New("DEBUG_ROUTES cannot be enabled in production")
	}

	return nil
}
