package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/apierr"
)

// RespondDomainError maps the error taxonomy onto HTTP statuses so handlers
// never switch on error types themselves.
func RespondDomainError(c *gin.Context, err error) {
	if ae, ok := apierr.From(err); ok {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, domain.ErrPermissionDenied):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, domain.ErrNotEnrolled):
		RespondError(c, http.StatusForbidden, "not_enrolled", err)
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		RespondError(c, http.StatusConflict, "already_enrolled", err)
	case errors.Is(err, domain.ErrCourseNotEnrollable):
		RespondError(c, http.StatusConflict, "course_not_enrollable", err)
	case errors.Is(err, domain.ErrMaxAttemptsExceeded):
		RespondError(c, http.StatusConflict, "max_attempts_exceeded", err)
	case errors.Is(err, domain.ErrExamNotAvailable):
		RespondError(c, http.StatusConflict, "exam_not_available", err)
	case errors.Is(err, domain.ErrAlreadyGraded):
		RespondError(c, http.StatusConflict, "already_graded", err)
	case errors.Is(err, domain.ErrNotCompleted):
		RespondError(c, http.StatusConflict, "not_completed", err)
	case errors.Is(err, domain.ErrStorageFailure):
		RespondError(c, http.StatusInternalServerError, "storage_failure", err)
	default:
		RespondError(c, http.StatusBadRequest, "bad_request", err)
	}
}
