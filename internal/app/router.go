package app

import (
	internalhttp "github.com/skillforge/skillforge-backend/internal/http"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, h Handlers, mw Middleware) *internalhttp.Server {
	return internalhttp.NewServer(internalhttp.RouterConfig{
		Log:                log,
		AuthMiddleware:     mw.Auth,
		HealthHandler:      h.Health,
		AuthHandler:        h.Auth,
		UserHandler:        h.User,
		CourseHandler:      h.Course,
		ContentHandler:     h.Content,
		EnrollmentHandler:  h.Enrollment,
		ProgressHandler:    h.Progress,
		ExamHandler:        h.Exam,
		CertificateHandler: h.Certificate,
		DashboardHandler:   h.Dashboard,
	})
}
