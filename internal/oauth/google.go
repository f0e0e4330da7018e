package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/trackmyoffer/bff/internal/domain"
	"golang.org/x/oauth2"
)

const (
	defaultAuthURL      = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL     = "https://accounts.google.com/o/oauth2/token"
	defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	defaultUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Scopes requested at login
var Scopes = []string{"profile", "email"}

// Config is the Google OAuth client configuration. Endpoint URLs may be overridden for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL      string
	TokenURL     string
	TokenInfoURL string
	UserInfoURL  string
}

// GoogleProvider talks to Google's authorization, token, tokeninfo and userinfo endpoints
type GoogleProvider struct {
	oauth        *oauth2.Config
	tokenInfoURL string
	userInfoURL  string
	client       *http.Client
}

// NewGoogleProvider creates a provider that issues all calls through client
func NewGoogleProvider(cfg Config, client *http.Client) *GoogleProvider {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.TokenInfoURL == "" {
		cfg.TokenInfoURL = defaultTokenInfoURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		tokenInfoURL: cfg.TokenInfoURL,
		userInfoURL:  cfg.UserInfoURL,
		client:       client,
	}
}

// AuthCodeURL returns the consent page URL carrying state
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	return token.AccessToken, nil
}

// Introspect asks the tokeninfo endpoint whether accessToken is live. A non-200 answer means
// the token is expired or revoked; the error is reserved for transport failures.
func (p *GoogleProvider) Introspect(ctx context.Context, accessToken string) (bool, error) {
	endpoint := p.tokenInfoURL + "?" + url.Values{"access_token": {accessToken}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}

// UserInfo fetches the profile of the token owner
func (p *GoogleProvider) UserInfo(ctx context.Context, accessToken string) (*domain.UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info domain.UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	if info.Email == "" {
		return nil, fmt.Errorf("empty email in user info response")
	}

	return &info, nil
}
