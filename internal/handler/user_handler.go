package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/service"
	"go.uber.org/zap"
)

const profileDeletedMessage = "Profile successfully deleted!"

// UserHandler serves the /user export and delete operations
type UserHandler struct {
	userData *service.UserDataService
	store    *SessionStore
	logger   *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userData *service.UserDataService, store *SessionStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userData: userData,
		store:    store,
		logger:   logger,
	}
}

// Export returns everything stored about the caller
// @Summary Export user data
// @Tags user
// @Produce json
// @Success 200 {object} dto.ExportResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /user/export [get]
func (h *UserHandler) Export(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	export, err := h.userData.Export(c.Request.Context(), identity.ProfileID)
	if err != nil {
		h.logger.Warn("export failed", zap.Int64("profile_id", identity.ProfileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, export)
}

// Delete removes the caller's data from the feature service and ends the session.
// A failure part way through leaves the entries deleted so far deleted.
// @Summary Delete user
// @Tags user
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /user/delete [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}

	if err := h.userData.Delete(c.Request.Context(), identity); err != nil {
		h.logger.Error("user deletion failed", zap.Int64("profile_id", identity.ProfileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: err.Error()})
		return
	}

	h.store.Clear(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: profileDeletedMessage})
}
