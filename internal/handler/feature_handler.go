package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/service"
	"github.com/trackmyoffer/bff/internal/upstream"
	"go.uber.org/zap"
)

// FeatureHandler proxies the /features/v0 routes to the feature service. Upstream statuses
// and bodies are relayed as received.
type FeatureHandler struct {
	client  *upstream.Client
	tracker *service.ActivityTracker
	logger  *zap.Logger
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(client *upstream.Client, tracker *service.ActivityTracker, logger *zap.Logger) *FeatureHandler {
	return &FeatureHandler{
		client:  client,
		tracker: tracker,
		logger:  logger,
	}
}

// SaveProfile stores the caller's profile; the id is always the caller's
// @Summary Save profile
// @Tags features
// @Accept json
// @Produce json
// @Router /features/v0/profile [post]
func (h *FeatureHandler) SaveProfile(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	payload.SetInt64("id", identity.ProfileID)

	body, err := json.Marshal(payload)
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp, err := h.client.SaveProfile(c.Request.Context(), body)
	h.relay(c, resp, err)
}

// GetProfile returns the caller's profile
// @Summary Get profile
// @Tags features
// @Produce json
// @Router /features/v0/profile [get]
func (h *FeatureHandler) GetProfile(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	resp, err := h.client.GetProfile(c.Request.Context(), identity.ProfileID)
	h.relay(c, resp, err)
}

// AddEducation adds an education entry to the caller's profile
func (h *FeatureHandler) AddEducation(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	payload, ok := bindPayload(c)
	if !ok {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp, err := h.client.AddEducation(c.Request.Context(), identity.ProfileID, body)
	h.relay(c, resp, err)
}

// ListEducations lists the caller's education entries
func (h *FeatureHandler) ListEducations(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	resp, err := h.client.ListEducations(c.Request.Context(), identity.ProfileID)
	h.relay(c, resp, err)
}

// DeleteEducation deletes the education entry named by ?educationId
func (h *FeatureHandler) DeleteEducation(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	educationID, ok := queryID(c, "educationId", "Missing education id parameter")
	if !ok {
		return
	}

	resp, err := h.client.DeleteEducation(c.Request.Context(), identity.ProfileID, educationID)
	h.relay(c, resp, err)
}

// AddExperience adds an experience entry to the caller's profile
func (h *FeatureHandler) AddExperience(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	payload.SetInt64("profile_id", identity.ProfileID)

	body, err := json.Marshal(payload)
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp, err := h.client.AddExperience(c.Request.Context(), body)
	h.relay(c, resp, err)
}

// ListExperiences lists the caller's experience entries
func (h *FeatureHandler) ListExperiences(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	resp, err := h.client.ListExperiences(c.Request.Context(), identity.ProfileID)
	h.relay(c, resp, err)
}

// DeleteExperience deletes the experience entry named by ?experienceId
func (h *FeatureHandler) DeleteExperience(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	experienceID, ok := queryID(c, "experienceId", "Missing experience id parameter")
	if !ok {
		return
	}

	resp, err := h.client.DeleteExperience(c.Request.Context(), identity.ProfileID, experienceID)
	h.relay(c, resp, err)
}

// BuildCV generates a CV tailored to a job description
// @Summary Build CV
// @Tags features
// @Accept json
// @Param request body dto.CVRequest true "Job description and optional region"
// @Router /features/v0/build-cv [post]
func (h *FeatureHandler) BuildCV(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	var req dto.CVRequest
	if !bindJSON(c, &req) {
		return
	}

	extracted, ok := h.extract(c, req.JobDescription)
	if !ok {
		return
	}

	resp, err := h.client.BuildCV(c.Request.Context(), identity.ProfileID, req.Region, extracted)
	h.relay(c, resp, err)
}

// MatchPosition scores the caller's profile against a job description
func (h *FeatureHandler) MatchPosition(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	var req dto.JobDescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	extracted, ok := h.extract(c, req.JobDescription)
	if !ok {
		return
	}

	resp, err := h.client.MatchPosition(c.Request.Context(), identity.ProfileID, extracted)
	h.relay(c, resp, err)
}

// CoverLetter writes a cover letter and answers with its text. ?textStyle and ?notes are
// passed on to the generator.
// @Summary Generate cover letter
// @Tags features
// @Accept json
// @Produce plain
// @Param textStyle query string false "Writing style"
// @Param notes query string false "Extra notes for the generator"
// @Router /features/v0/cover-letter [post]
func (h *FeatureHandler) CoverLetter(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	var req dto.JobDescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	extracted, ok := h.extract(c, req.JobDescription)
	if !ok {
		return
	}

	resp, err := h.client.GenerateCoverLetter(
		c.Request.Context(),
		identity.ProfileID,
		c.Query("textStyle"),
		c.Query("notes"),
		extracted,
	)
	if err != nil || !resp.OK() {
		h.relay(c, resp, err)
		return
	}

	var result dto.CoverLetterResult
	if err := json.Unmarshal(resp.Body, &result); err != nil || result.CoverLetter == nil {
		h.logger.Warn("cover letter response without cover_letter field", zap.Int("status", resp.Status))
		h.relay(c, resp, nil)
		return
	}

	c.String(resp.Status, *result.CoverLetter)
}

// AnalyzeGaps lists what the caller's profile lacks for a job description
func (h *FeatureHandler) AnalyzeGaps(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	var req dto.JobDescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	extracted, ok := h.extract(c, req.JobDescription)
	if !ok {
		return
	}

	resp, err := h.client.AnalyzeGaps(c.Request.Context(), identity.ProfileID, extracted)
	h.relay(c, resp, err)
}

// Streak returns the caller's current activity streak
// @Summary Activity streak
// @Tags features
// @Produce json
// @Success 200 {object} dto.StreakResponse
// @Router /features/v0/streak [get]
func (h *FeatureHandler) Streak(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	streak, err := h.tracker.GetCurrentStreak(c.Request.Context(), identity.Email)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StreakResponse{CurrentStreak: streak})
}

// extract runs the job description through the extractor. On a non-2xx answer the
// extractor's response is relayed and ok is false.
func (h *FeatureHandler) extract(c *gin.Context, jobDescription string) ([]byte, bool) {
	resp, err := h.client.ExtractJobDescription(c.Request.Context(), jobDescription)
	if err != nil || !resp.OK() {
		h.relay(c, resp, err)
		return nil, false
	}
	return resp.Body, true
}

// relay writes the upstream response, or a 5xx when the call did not complete
func (h *FeatureHandler) relay(c *gin.Context, resp *upstream.Response, err error) {
	if err != nil {
		status := http.StatusBadGateway
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   http.StatusText(status),
			Message: "Feature service unavailable",
		})
		return
	}

	c.Data(resp.Status, resp.ContentType, resp.Body)
}

func (h *FeatureHandler) internalError(c *gin.Context, err error) {
	h.logger.Error("feature request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: "Failed to process request",
	})
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return false
	}
	return true
}

func bindPayload(c *gin.Context) (dto.Payload, bool) {
	var payload dto.Payload
	if !bindJSON(c, &payload) {
		return nil, false
	}
	if payload == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "request body must be a JSON object",
		})
		return nil, false
	}
	return payload, true
}

// queryID parses a required integer query parameter, answering 400 with message when it
// is missing or not an integer
func queryID(c *gin.Context, name, message string) (int64, bool) {
	value, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, message)
		return 0, false
	}
	return value, true
}
