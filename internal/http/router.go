package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/skillforge/skillforge-backend/internal/http/handlers"
	httpMW "github.com/skillforge/skillforge-backend/internal/http/middleware"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	CourseHandler      *httpH.CourseHandler
	ContentHandler     *httpH.ContentHandler
	EnrollmentHandler  *httpH.EnrollmentHandler
	ProgressHandler    *httpH.ProgressHandler
	ExamHandler        *httpH.ExamHandler
	CertificateHandler *httpH.CertificateHandler
	DashboardHandler   *httpH.DashboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("skillforge"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Catalog (public)
		if cfg.CourseHandler != nil {
			api.GET("/categories", cfg.CourseHandler.ListCategories)
			api.GET("/courses", cfg.CourseHandler.ListCourses)
			api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
		}

		// Certificate verification (public)
		if cfg.CertificateHandler != nil {
			api.GET("/certificates/verify/:code", cfg.CertificateHandler.Verify)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Course authoring
		if cfg.CourseHandler != nil {
			protected.POST("/categories", cfg.CourseHandler.CreateCategory)
			protected.POST("/courses", cfg.CourseHandler.CreateCourse)
			protected.PATCH("/courses/:id", cfg.CourseHandler.UpdateCourse)
			protected.POST("/courses/:id/publish", cfg.CourseHandler.PublishCourse)
			protected.POST("/courses/:id/archive", cfg.CourseHandler.ArchiveCourse)
			protected.GET("/teacher/courses", cfg.CourseHandler.ListOwnCourses)
		}

		// Content
		if cfg.ContentHandler != nil {
			protected.GET("/courses/:id/content", cfg.ContentHandler.ListCourseContent)
			protected.POST("/courses/:id/content", cfg.ContentHandler.CreateContent)
			protected.PUT("/courses/:id/content/order", cfg.ContentHandler.ReorderContent)
			protected.PATCH("/content/:id", cfg.ContentHandler.UpdateContent)
			protected.DELETE("/content/:id", cfg.ContentHandler.DeleteContent)
		}

		// Enrollment
		if cfg.EnrollmentHandler != nil {
			protected.POST("/courses/:id/enroll", cfg.EnrollmentHandler.Enroll)
			protected.GET("/enrollments", cfg.EnrollmentHandler.ListMyEnrollments)
			protected.GET("/enrollments/:id", cfg.EnrollmentHandler.GetEnrollment)
			protected.POST("/enrollments/:id/drop", cfg.EnrollmentHandler.Drop)
			protected.POST("/enrollments/:id/rating", cfg.EnrollmentHandler.Rate)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/content/:id/access", cfg.ProgressHandler.RecordAccess)
			protected.POST("/content/:id/complete", cfg.ProgressHandler.MarkCompleted)
			protected.GET("/courses/:id/progress", cfg.ProgressHandler.GetCourseProgress)
		}

		// Exams
		if cfg.ExamHandler != nil {
			protected.GET("/courses/:id/exams", cfg.ExamHandler.ListCourseExams)
			protected.POST("/courses/:id/exams", cfg.ExamHandler.CreateExam)
			protected.POST("/exams/:id/publish", cfg.ExamHandler.PublishExam)
			protected.GET("/exams/:id/questions", cfg.ExamHandler.ListExamQuestions)
			protected.POST("/exams/:id/questions", cfg.ExamHandler.AddQuestions)
			protected.POST("/exams/:id/attempts", cfg.ExamHandler.StartAttempt)
			protected.GET("/exams/:id/results", cfg.ExamHandler.ListMyResults)
			protected.POST("/attempts/:id/submit", cfg.ExamHandler.SubmitAttempt)
		}

		// Certificates
		if cfg.CertificateHandler != nil {
			protected.POST("/enrollments/:id/certificate", cfg.CertificateHandler.Issue)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard", cfg.DashboardHandler.StudentDashboard)
		}
	}

	return r
}
