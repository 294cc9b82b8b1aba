package app

import (
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/platform/render"
	"github.com/skillforge/skillforge-backend/internal/platform/storage"
	"github.com/skillforge/skillforge-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Catalog     services.CatalogService
	Content     services.ContentService
	Enrollment  services.EnrollmentService
	Progress    services.ProgressService
	Exam        services.ExamService
	Certificate services.CertificateService
	Dashboard   services.DashboardService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	var store storage.ObjectStore
	var err error
	switch cfg.StorageMode {
	case "gcs":
		store, err = storage.NewGCSStore(log)
		if err != nil {
			return Services{}, err
		}
	default:
		store, err = storage.NewLocalStore(log, cfg.LocalStorageDir, cfg.LocalStorageURL)
		if err != nil {
			return Services{}, err
		}
	}

	renderer, err := render.NewCertificateRenderer(log)
	if err != nil {
		// Certificates are still issued, just without a rendered file.
		log.Warn("certificate renderer unavailable", "error", err)
		renderer = nil
	}

	auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	catalog := services.NewCatalogService(db, log, r.Category, r.Course)
	content := services.NewContentService(db, log, r.Course, r.Content)
	enrollment := services.NewEnrollmentService(db, log, r.Course, r.Enrollment, r.Content, r.Progress, r.ContentProgress, r.Exam, r.ExamResult)
	progress := services.NewProgressService(db, log, r.Content, r.Enrollment, r.Progress, r.ContentProgress, enrollment)
	exam := services.NewExamService(db, log, r.Course, r.Enrollment, r.Exam, r.Question, r.Answer, r.ExamResult, enrollment)
	certificate := services.NewCertificateService(db, log, r.User, r.Course, r.Enrollment, r.Certificate, renderer, store)
	dashboard := services.NewDashboardService(db, log, r.Enrollment, r.Certificate, r.ExamResult)

	return Services{
		Auth:        auth,
		Catalog:     catalog,
		Content:     content,
		Enrollment:  enrollment,
		Progress:    progress,
		Exam:        exam,
		Certificate: certificate,
		Dashboard:   dashboard,
	}, nil
}
