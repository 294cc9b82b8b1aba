package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/services"
)

type CertificateHandler struct {
	certificateService services.CertificateService
}

func NewCertificateHandler(certificateService services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// POST /enrollments/:id/certificate
func (ch *CertificateHandler) Issue(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", err)
		return
	}
	cert, err := ch.certificateService.Issue(c.Request.Context(), enrollmentID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"certificate": cert})
}

// GET /certificates/verify/:code (public)
func (ch *CertificateHandler) Verify(c *gin.Context) {
	cert, err := ch.certificateService.Verify(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"certificate": cert})
}
