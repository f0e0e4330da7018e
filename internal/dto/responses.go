package dto

import (
	"encoding/json"

	"github.com/trackmyoffer/bff/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse is returned by the composite user operations
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthStatusResponse reports whether the caller holds a valid session
type AuthStatusResponse struct {
	IsAuthenticated bool             `json:"isAuthenticated"`
	UserData        *domain.UserInfo `json:"userData"`
}

// LogoutResponse reports the outcome of a logout
type LogoutResponse struct {
	Status string `json:"status"`
}

const (
	LogoutStatusSuccess          = "success"
	LogoutStatusAlreadyLoggedOut = "already_logged_out"
)

// StreakResponse carries the caller's activity streak
type StreakResponse struct {
	CurrentStreak int `json:"currentStreak"`
}

// ExportResponse aggregates everything the feature service stores about a user
type ExportResponse struct {
	Profile    json.RawMessage   `json:"profile"`
	Education  []json.RawMessage `json:"education"`
	Experience []json.RawMessage `json:"experience"`
}

// CoverLetterResult is the feature service's cover letter envelope
type CoverLetterResult struct {
	CoverLetter *string `json:"cover_letter"`
}
