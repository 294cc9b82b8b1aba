package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/platform/render"
	"github.com/skillforge/skillforge-backend/internal/platform/storage"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type CertificateService interface {
	// Issue creates the certificate for a completed enrollment. Calling it
	// again for the same enrollment returns the existing record.
	Issue(ctx context.Context, enrollmentID uuid.UUID) (*types.Certificate, error)
	Verify(ctx context.Context, verificationCode string) (*types.Certificate, error)
}

type certificateService struct {
	db              *gorm.DB
	log             *logger.Logger
	userRepo        repos.UserRepo
	courseRepo      repos.CourseRepo
	enrollmentRepo  repos.EnrollmentRepo
	certificateRepo repos.CertificateRepo

	// renderer and store are optional; without them certificates are
	// issued with no rendered file.
	renderer render.CertificateRenderer
	store    storage.ObjectStore
}

func NewCertificateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
	certificateRepo repos.CertificateRepo,
	renderer render.CertificateRenderer,
	store storage.ObjectStore,
) CertificateService {
	return &certificateService{
		db:              db,
		log:             baseLog.With("service", "CertificateService"),
		userRepo:        userRepo,
		courseRepo:      courseRepo,
		enrollmentRepo:  enrollmentRepo,
		certificateRepo: certificateRepo,
		renderer:        renderer,
		store:           store,
	}
}

func (cs *certificateService) Issue(ctx context.Context, enrollmentID uuid.UUID) (*types.Certificate, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}

	var cert *types.Certificate
	var enrollment *types.Enrollment
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := cs.enrollmentRepo.GetByIDs(ctx, tx, []uuid.UUID{enrollmentID})
		if err != nil {
			return fmt.Errorf("%w: load enrollment: %v", domain.ErrStorageFailure, err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("%w: enrollment %s", domain.ErrNotFound, enrollmentID)
		}
		enrollment = rows[0]
		if enrollment.StudentID != rd.UserID && !domain.IsAdmin(rd.Role) {
			return fmt.Errorf("%w: not the enrollment owner", domain.ErrPermissionDenied)
		}
		if enrollment.Status != types.EnrollmentCompleted {
			return fmt.Errorf("%w: enrollment %s", domain.ErrNotCompleted, enrollmentID)
		}

		existing, err := cs.certificateRepo.GetByEnrollmentID(ctx, tx, enrollmentID)
		if err != nil {
			return fmt.Errorf("%w: load certificate: %v", domain.ErrStorageFailure, err)
		}
		if existing != nil {
			cert = existing
			return nil
		}

		issued := time.Now()
		cert = &types.Certificate{
			ID:                uuid.New(),
			EnrollmentID:      enrollmentID,
			CertificateNumber: newCertificateNumber(issued),
			VerificationCode:  newVerificationCode(),
			IssuedDate:        issued,
			IsVerified:        true,
		}
		if _, err := cs.certificateRepo.Create(ctx, tx, []*types.Certificate{cert}); err != nil {
			return fmt.Errorf("%w: create certificate: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cert.FileURL == "" && cs.renderer != nil && cs.store != nil {
		if url, renderErr := cs.renderAndStore(ctx, cert, enrollment); renderErr != nil {
			// The record stands on its own; rendering can be retried.
			cs.log.Warn("certificate render failed", "certificate_number", cert.CertificateNumber, "error", renderErr)
		} else {
			cert.FileURL = url
			if err := cs.db.WithContext(ctx).Save(cert).Error; err != nil {
				return nil, fmt.Errorf("%w: save certificate file url: %v", domain.ErrStorageFailure, err)
			}
		}
	}

	cs.log.Info("certificate issued", "certificate_number", cert.CertificateNumber, "student_id", enrollment.StudentID)
	return cert, nil
}

func (cs *certificateService) renderAndStore(ctx context.Context, cert *types.Certificate, enrollment *types.Enrollment) (string, error) {
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{enrollment.CourseID})
	if err != nil || len(courses) == 0 {
		return "", fmt.Errorf("load course for certificate: %w", err)
	}
	course := courses[0]
	users, err := cs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{enrollment.StudentID, course.TeacherID})
	if err != nil {
		return "", fmt.Errorf("load users for certificate: %w", err)
	}
	var studentName, teacherName string
	for _, u := range users {
		switch u.ID {
		case enrollment.StudentID:
			studentName = u.FullName()
		case course.TeacherID:
			teacherName = u.FullName()
		}
	}

	completedAt := cert.IssuedDate
	if enrollment.CompletedAt != nil {
		completedAt = *enrollment.CompletedAt
	}
	png, err := cs.renderer.Render(render.CertificateData{
		StudentName:       studentName,
		CourseTitle:       course.Title,
		TeacherName:       teacherName,
		CertificateNumber: cert.CertificateNumber,
		VerificationCode:  cert.VerificationCode,
		CompletedAt:       completedAt,
	})
	if err != nil {
		return "", fmt.Errorf("render certificate: %w", err)
	}

	key := fmt.Sprintf("certificates/%s.png", cert.CertificateNumber)
	url, err := cs.store.Upload(ctx, key, png, "image/png")
	if err != nil {
		return "", fmt.Errorf("upload certificate: %w", err)
	}
	return url, nil
}

func (cs *certificateService) Verify(ctx context.Context, verificationCode string) (*types.Certificate, error) {
	code := strings.ToUpper(strings.TrimSpace(verificationCode))
	cert, err := cs.certificateRepo.GetByVerificationCode(ctx, nil, code)
	if err != nil {
		return nil, fmt.Errorf("%w: load certificate: %v", domain.ErrStorageFailure, err)
	}
	if cert == nil || !cert.IsVerified {
		return nil, fmt.Errorf("%w: verification code", domain.ErrNotFound)
	}
	return cert, nil
}

// newCertificateNumber yields CERT-<YYYYMMDD>-<8 uppercase uuid chars>.
func newCertificateNumber(issued time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("CERT-%s-%s", issued.Format("20060102"), suffix)
}

// newVerificationCode is the first 20 hex chars of sha256 over a fresh
// uuid, uppercased.
func newVerificationCode() string {
	sum := sha256.Sum256([]byte(uuid.New().String()))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:20])
}
