package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, server *httptest.Server) *GoogleProvider {
	t.Helper()

	return NewGoogleProvider(Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://localhost:8080/callback",
		TokenURL:     server.URL + "/token",
		TokenInfoURL: server.URL + "/tokeninfo",
		UserInfoURL:  server.URL + "/userinfo",
	}, server.Client())
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	provider := NewGoogleProvider(Config{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost:8080/callback",
	}, nil)

	raw := provider.AuthCodeURL("state-123")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", parsed.Host)

	query := parsed.Query()
	assert.Equal(t, "test-client-id", query.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/callback", query.Get("redirect_uri"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "state-123", query.Get("state"))
	assert.Equal(t, "profile email", query.Get("scope"))
}

func TestGoogleProvider_Exchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		assert.Equal(t, "test-client-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "ya29.access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	token, err := newTestProvider(t, server).Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", token)
}

func TestGoogleProvider_ExchangeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	_, err := newTestProvider(t, server).Exchange(context.Background(), "stale-code")
	assert.Error(t, err)
}

func TestGoogleProvider_Introspect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "live" {
			_, _ = w.Write([]byte(`{"expires_in":"3599"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_description":"Invalid Value"}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server)

	valid, err := provider.Introspect(context.Background(), "live")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = provider.Introspect(context.Background(), "expired")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestGoogleProvider_IntrospectTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := server.Client()
	client.Timeout = 20 * time.Millisecond
	provider := NewGoogleProvider(Config{TokenInfoURL: server.URL}, client)

	valid, err := provider.Introspect(context.Background(), "slow")
	assert.Error(t, err)
	assert.False(t, valid)
}

func TestGoogleProvider_UserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ya29.access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "1234",
			"email":          "ada@example.com",
			"verified_email": true,
			"name":           "Ada Lovelace",
			"given_name":     "Ada",
			"family_name":    "Lovelace",
			"picture":        "https://example.com/ada.png",
		})
	}))
	defer server.Close()

	provider := newTestProvider(t, server)

	info, err := provider.UserInfo(context.Background(), "ya29.access")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", info.Email)
	assert.True(t, info.VerifiedEmail)
	assert.Equal(t, "Ada", info.GivenName)
	assert.Equal(t, "Lovelace", info.FamilyName)

	_, err = provider.UserInfo(context.Background(), "wrong")
	assert.Error(t, err)
}
