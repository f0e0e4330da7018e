package dto

import (
	"encoding/json"
	"fmt"
)

// Payload is an upstream JSON object the proxy treats as opaque, apart from the identity
// fields it injects.
type Payload map[string]json.RawMessage

// SetInt64 stores v under key, replacing any client-supplied value
func (p Payload) SetInt64(key string, v int64) {
	raw, _ := json.Marshal(v)
	p[key] = raw
}

// Int64 reads an integer field
func (p Payload) Int64(key string) (int64, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("field %q is missing", key)
	}

	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
	}
	return v, nil
}

// JobDescriptionRequest is the body of routes that start from free-text job descriptions
type JobDescriptionRequest struct {
	JobDescription string `json:"jobDescription" binding:"required"`
}

// CVRequest represents a CV generation request
type CVRequest struct {
	JobDescription string `json:"jobDescription" binding:"required"`
	Region         string `json:"region"`
}

// NewProfileRequest is the minimal profile created upstream for a first-time user
type NewProfileRequest struct {
	ID              *int64  `json:"id"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Country         *string `json:"country"`
	State           *string `json:"state"`
	City            *string `json:"city"`
	LinkedinURL     *string `json:"linkedin_url"`
	GithubURL       *string `json:"github_url"`
	PersonalWebsite *string `json:"personal_website"`
	OtherURL        *string `json:"other_url"`
	AboutMe         *string `json:"about_me"`
}
