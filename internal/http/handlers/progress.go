package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// POST /content/:id/access
func (ph *ProgressHandler) RecordAccess(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
		return
	}
	var req struct {
		MinutesSpent int `json:"minutes_spent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	cp, err := ph.progressService.RecordContentAccess(c.Request.Context(), contentID, req.MinutesSpent)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content_progress": cp})
}

// POST /content/:id/complete
func (ph *ProgressHandler) MarkCompleted(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
		return
	}
	cp, err := ph.progressService.MarkContentCompleted(c.Request.Context(), contentID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content_progress": cp})
}

// GET /courses/:id/progress
func (ph *ProgressHandler) GetCourseProgress(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	progress, err := ph.progressService.GetCourseProgress(c.Request.Context(), courseID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, progress)
}
