package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/services"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// GET /courses/:id/content
func (ch *ContentHandler) ListCourseContent(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	content, err := ch.contentService.ListCourseContent(c.Request.Context(), courseID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": content})
}

// POST /courses/:id/content
func (ch *ContentHandler) CreateContent(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	var req struct {
		Title            string `json:"title"`
		Body             string `json:"body"`
		IsMandatory      *bool  `json:"is_mandatory"`
		EstimatedMinutes int    `json:"estimated_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	content, err := ch.contentService.CreateContent(c.Request.Context(), services.CreateContentInput{
		CourseID:         courseID,
		Title:            req.Title,
		Body:             req.Body,
		IsMandatory:      req.IsMandatory,
		EstimatedMinutes: req.EstimatedMinutes,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"content": content})
}

// PATCH /content/:id
func (ch *ContentHandler) UpdateContent(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
		return
	}
	var req struct {
		Title            *string `json:"title"`
		Body             *string `json:"body"`
		IsMandatory      *bool   `json:"is_mandatory"`
		EstimatedMinutes *int    `json:"estimated_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	content, err := ch.contentService.UpdateContent(c.Request.Context(), contentID, services.UpdateContentInput{
		Title:            req.Title,
		Body:             req.Body,
		IsMandatory:      req.IsMandatory,
		EstimatedMinutes: req.EstimatedMinutes,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": content})
}

// DELETE /content/:id
func (ch *ContentHandler) DeleteContent(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
		return
	}
	if err := ch.contentService.DeleteContent(c.Request.Context(), contentID); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /courses/:id/content/order
func (ch *ContentHandler) ReorderContent(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	var req struct {
		ContentIDs []string `json:"content_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.ContentIDs))
	for _, raw := range req.ContentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
			return
		}
		ids = append(ids, id)
	}
	if err := ch.contentService.ReorderContent(c.Request.Context(), courseID, ids); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
