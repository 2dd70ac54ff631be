package handler

import (
	"net/http"

	"github.com/catprepedge/catprep-backend/internal/middleware"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/catprepedge/catprep-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ProgressHandler exposes per-topic progress of the current user.
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// ListProgress godoc
// GET /api/v1/progress
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	userID, err := claims.UserUUID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	rows, err := h.progressService.List(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": rows})
}

// RecordProgress godoc
// POST /api/v1/progress
// Records one answered question outside a streamed test.
func (h *ProgressHandler) RecordProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.RecordProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.progressService.Enqueue(c.Request.Context(), model.ProgressEvent{
		UserID:    claims.UserID,
		Section:   req.Section,
		Topic:     req.Topic,
		IsCorrect: req.IsCorrect,
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"status": "queued"})
}
