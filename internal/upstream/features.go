package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trackmyoffer/bff/internal/dto"
)

// ErrMalformedResponse is returned when a 2xx body lacks the fields the caller needs
var ErrMalformedResponse = errors.New("malformed upstream response")

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func profileQuery(profileID int64) url.Values {
	return url.Values{"profile_id": {id(profileID)}}
}

// CreateProfile creates a profile and returns the id the feature service assigned to it
func (c *Client) CreateProfile(ctx context.Context, profile dto.NewProfileRequest) (int64, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal profile: %w", err)
	}

	resp, err := c.SaveProfile(ctx, body)
	if err != nil {
		return 0, err
	}
	if err := resp.Err("create profile"); err != nil {
		return 0, err
	}

	var created struct {
		ID *json.Number `json:"id"`
	}
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if created.ID == nil {
		return 0, fmt.Errorf("%w: missing id", ErrMalformedResponse)
	}

	profileID, err := created.ID.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not an integer", ErrMalformedResponse, created.ID.String())
	}

	return profileID, nil
}

// SaveProfile posts a profile payload as is
func (c *Client) SaveProfile(ctx context.Context, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Op: "save_profile", Method: http.MethodPost, Path: "/api/profile", Body: body})
}

// GetProfile fetches a profile
func (c *Client) GetProfile(ctx context.Context, profileID int64) (*Response, error) {
	return c.Do(ctx, Request{Op: "get_profile", Method: http.MethodGet, Path: "/api/profile/" + id(profileID)})
}

// DeleteProfile deletes a profile
func (c *Client) DeleteProfile(ctx context.Context, profileID int64) (*Response, error) {
	return c.Do(ctx, Request{Op: "delete_profile", Method: http.MethodDelete, Path: "/api/profile/" + id(profileID)})
}

// AddEducation adds an education entry to a profile
func (c *Client) AddEducation(ctx context.Context, profileID int64, body []byte) (*Response, error) {
	return c.Do(ctx, Request{
		Op:     "add_education",
		Method: http.MethodPost,
		Path:   "/api/profile/" + id(profileID) + "/education",
		Body:   body,
	})
}

// ListEducations lists the education entries of a profile
func (c *Client) ListEducations(ctx context.Context, profileID int64) (*Response, error) {
	return c.Do(ctx, Request{Op: "list_educations", Method: http.MethodGet, Path: "/api/" + id(profileID) + "/educations"})
}

// DeleteEducation deletes one education entry
func (c *Client) DeleteEducation(ctx context.Context, profileID, educationID int64) (*Response, error) {
	return c.Do(ctx, Request{
		Op:     "delete_education",
		Method: http.MethodDelete,
		Path:   "/api/profile/" + id(profileID) + "/education/" + id(educationID),
	})
}

// AddExperience adds an experience entry; the body names its profile in profile_id
func (c *Client) AddExperience(ctx context.Context, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Op: "add_experience", Method: http.MethodPost, Path: "/api/experience", Body: body})
}

// ListExperiences lists the experience entries of a profile
func (c *Client) ListExperiences(ctx context.Context, profileID int64) (*Response, error) {
	return c.Do(ctx, Request{Op: "list_experiences", Method: http.MethodGet, Path: "/api/" + id(profileID) + "/experiences"})
}

// DeleteExperience deletes one experience entry
func (c *Client) DeleteExperience(ctx context.Context, profileID, experienceID int64) (*Response, error) {
	return c.Do(ctx, Request{
		Op:     "delete_experience",
		Method: http.MethodDelete,
		Path:   "/api/" + id(profileID) + "/experiences/" + id(experienceID),
	})
}

// ExtractJobDescription turns free text into the structured job description the
// generation endpoints consume
func (c *Client) ExtractJobDescription(ctx context.Context, jobDescription string) (*Response, error) {
	body, err := json.Marshal(dto.JobDescriptionRequest{JobDescription: jobDescription})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job description: %w", err)
	}
	return c.Do(ctx, Request{Op: "extract_job_description", Method: http.MethodPost, Path: "/api/extract-job-description", Body: body})
}

// BuildCV generates a CV for an extracted job description
func (c *Client) BuildCV(ctx context.Context, profileID int64, region string, extracted []byte) (*Response, error) {
	query := profileQuery(profileID)
	if region != "" {
		query.Set("region", region)
	}
	return c.Do(ctx, Request{Op: "build_cv", Method: http.MethodPost, Path: "/api/build-cv", Query: query, Body: extracted})
}

// MatchPosition scores a profile against an extracted job description
func (c *Client) MatchPosition(ctx context.Context, profileID int64, extracted []byte) (*Response, error) {
	return c.Do(ctx, Request{
		Op:     "match_position",
		Method: http.MethodPost,
		Path:   "/api/match-position",
		Query:  profileQuery(profileID),
		Body:   extracted,
	})
}

// GenerateCoverLetter writes a cover letter; empty style and notes are omitted
func (c *Client) GenerateCoverLetter(ctx context.Context, profileID int64, style, notes string, extracted []byte) (*Response, error) {
	query := profileQuery(profileID)
	if style != "" {
		query.Set("style", style)
	}
	if notes != "" {
		query.Set("notes", notes)
	}
	return c.Do(ctx, Request{Op: "generate_cover_letter", Method: http.MethodPost, Path: "/api/generate-cover-letter", Query: query, Body: extracted})
}

// AnalyzeGaps lists what a profile is missing for an extracted job description
func (c *Client) AnalyzeGaps(ctx context.Context, profileID int64, extracted []byte) (*Response, error) {
	return c.Do(ctx, Request{
		Op:     "analyze_gaps",
		Method: http.MethodPost,
		Path:   "/api/analyze-gaps",
		Query:  profileQuery(profileID),
		Body:   extracted,
	})
}
