package app

import (
	httpH "github.com/skillforge/skillforge-backend/internal/http/handlers"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Course      *httpH.CourseHandler
	Content     *httpH.ContentHandler
	Enrollment  *httpH.EnrollmentHandler
	Progress    *httpH.ProgressHandler
	Exam        *httpH.ExamHandler
	Certificate *httpH.CertificateHandler
	Dashboard   *httpH.DashboardHandler
}

func wireHandlers(log *logger.Logger, s Services, r Repos) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Auth:        httpH.NewAuthHandler(s.Auth),
		User:        httpH.NewUserHandler(r.User),
		Course:      httpH.NewCourseHandler(s.Catalog),
		Content:     httpH.NewContentHandler(s.Content),
		Enrollment:  httpH.NewEnrollmentHandler(s.Enrollment),
		Progress:    httpH.NewProgressHandler(s.Progress),
		Exam:        httpH.NewExamHandler(s.Exam),
		Certificate: httpH.NewCertificateHandler(s.Certificate),
		Dashboard:   httpH.NewDashboardHandler(s.Dashboard),
	}
}
