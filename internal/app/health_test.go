package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func healthy(context.Context) error { return nil }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]Pinger
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name: "all components up",
			components: map[string]Pinger{
				"postgres": pingerFunc(healthy),
				"redis":    pingerFunc(healthy),
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "redis down",
			components: map[string]Pinger{
				"postgres": pingerFunc(healthy),
				"redis": pingerFunc(func(context.Context) error {
					return errors.New("connection refused")
				}),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"redis": "connection refused"},
		},
		{
			name: "ping honours deadline",
			components: map[string]Pinger{
				"postgres": pingerFunc(func(ctx context.Context) error {
					<-ctx.Done()
					return ctx.Err()
				}),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "context deadline exceeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", NewHealthCheckerFor(tt.components).Handler)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}
