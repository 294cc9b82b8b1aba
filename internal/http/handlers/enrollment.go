package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/services"
)

type EnrollmentHandler struct {
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// POST /courses/:id/enroll
func (eh *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	enrollment, err := eh.enrollmentService.Enroll(c.Request.Context(), courseID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": enrollment})
}

// GET /enrollments
func (eh *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	enrollments, err := eh.enrollmentService.ListMyEnrollments(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": enrollments})
}

// GET /enrollments/:id
func (eh *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", err)
		return
	}
	enrollment, err := eh.enrollmentService.GetEnrollment(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}

// POST /enrollments/:id/drop
func (eh *EnrollmentHandler) Drop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", err)
		return
	}
	enrollment, err := eh.enrollmentService.Drop(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}

// POST /enrollments/:id/rating
func (eh *EnrollmentHandler) Rate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", err)
		return
	}
	var req struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	enrollment, err := eh.enrollmentService.RecordRating(c.Request.Context(), id, services.RateEnrollmentInput{
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}
