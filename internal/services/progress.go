package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type CourseProgress struct {
	Progress        *types.Progress          `json:"progress"`
	ContentProgress []*types.ContentProgress `json:"content_progress"`
	Enrollment      *types.Enrollment        `json:"enrollment"`
}

type ProgressService interface {
	RecordContentAccess(ctx context.Context, contentID uuid.UUID, minutesSpent int) (*types.ContentProgress, error)
	MarkContentCompleted(ctx context.Context, contentID uuid.UUID) (*types.ContentProgress, error)
	GetCourseProgress(ctx context.Context, courseID uuid.UUID) (*CourseProgress, error)
}

type progressService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	contentRepo         repos.ContentRepo
	enrollmentRepo      repos.EnrollmentRepo
	progressRepo        repos.ProgressRepo
	contentProgressRepo repos.ContentProgressRepo
	enrollmentService   EnrollmentService
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	contentRepo repos.ContentRepo,
	enrollmentRepo repos.EnrollmentRepo,
	progressRepo repos.ProgressRepo,
	contentProgressRepo repos.ContentProgressRepo,
	enrollmentService EnrollmentService,
) ProgressService {
	return &progressService{
		db:                  db,
		log:                 baseLog.With("service", "ProgressService"),
		contentRepo:         contentRepo,
		enrollmentRepo:      enrollmentRepo,
		progressRepo:        progressRepo,
		contentProgressRepo: contentProgressRepo,
		enrollmentService:   enrollmentService,
	}
}

func (ps *progressService) RecordContentAccess(ctx context.Context, contentID uuid.UUID, minutesSpent int) (*types.ContentProgress, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !domain.IsStudent(rd.Role) {
		return nil, fmt.Errorf("%w: only students track progress", domain.ErrPermissionDenied)
	}
	if minutesSpent < 0 {
		minutesSpent = 0
	}

	var cp *types.ContentProgress
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		content, enrollment, err := ps.loadEnrolledContent(ctx, tx, rd.UserID, contentID)
		if err != nil {
			return err
		}

		progress, err := ps.progressRepo.GetOrCreate(ctx, tx, rd.UserID, content.CourseID)
		if err != nil {
			return fmt.Errorf("%w: resolve progress: %v", domain.ErrStorageFailure, err)
		}
		cp, err = ps.contentProgressRepo.GetOrCreate(ctx, tx, progress.ID, content.ID)
		if err != nil {
			return fmt.Errorf("%w: resolve content progress: %v", domain.ErrStorageFailure, err)
		}

		cp.TimeSpentMinutes += minutesSpent
		if err := ps.contentProgressRepo.Save(ctx, tx, cp); err != nil {
			return fmt.Errorf("%w: save content progress: %v", domain.ErrStorageFailure, err)
		}

		progress.TotalTimeSpentMinutes += minutesSpent
		contentID := content.ID
		progress.LastContentID = &contentID
		if err := ps.progressRepo.Save(ctx, tx, progress); err != nil {
			return fmt.Errorf("%w: save progress: %v", domain.ErrStorageFailure, err)
		}

		now := time.Now()
		enrollment.LastAccessedAt = &now
		if err := ps.enrollmentRepo.Save(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("%w: save enrollment access time: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// MarkContentCompleted is idempotent. The first call stamps CompletedAt;
// later calls leave the stamp untouched and still trigger the roll-up.
func (ps *progressService) MarkContentCompleted(ctx context.Context, contentID uuid.UUID) (*types.ContentProgress, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !domain.IsStudent(rd.Role) {
		return nil, fmt.Errorf("%w: only students track progress", domain.ErrPermissionDenied)
	}

	var cp *types.ContentProgress
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		content, _, err := ps.loadEnrolledContent(ctx, tx, rd.UserID, contentID)
		if err != nil {
			return err
		}

		progress, err := ps.progressRepo.GetOrCreate(ctx, tx, rd.UserID, content.CourseID)
		if err != nil {
			return fmt.Errorf("%w: resolve progress: %v", domain.ErrStorageFailure, err)
		}
		cp, err = ps.contentProgressRepo.GetOrCreate(ctx, tx, progress.ID, content.ID)
		if err != nil {
			return fmt.Errorf("%w: resolve content progress: %v", domain.ErrStorageFailure, err)
		}

		if !cp.IsCompleted {
			now := time.Now()
			cp.IsCompleted = true
			cp.CompletedAt = &now
			if err := ps.contentProgressRepo.Save(ctx, tx, cp); err != nil {
				return fmt.Errorf("%w: save content progress: %v", domain.ErrStorageFailure, err)
			}
		}

		_, err = ps.enrollmentService.RecomputeProgress(ctx, tx, rd.UserID, content.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

func (ps *progressService) GetCourseProgress(ctx context.Context, courseID uuid.UUID) (*CourseProgress, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	enrollment, err := ps.enrollmentRepo.GetByStudentAndCourse(ctx, nil, rd.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load enrollment: %v", domain.ErrStorageFailure, err)
	}
	if enrollment == nil {
		return nil, fmt.Errorf("%w: course %s", domain.ErrNotEnrolled, courseID)
	}

	out := &CourseProgress{Enrollment: enrollment}
	progress, err := ps.progressRepo.GetByStudentAndCourse(ctx, nil, rd.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load progress: %v", domain.ErrStorageFailure, err)
	}
	if progress != nil {
		out.Progress = progress
		out.ContentProgress, err = ps.contentProgressRepo.ListByProgress(ctx, nil, progress.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list content progress: %v", domain.ErrStorageFailure, err)
		}
	}
	return out, nil
}

func (ps *progressService) loadEnrolledContent(ctx context.Context, tx *gorm.DB, studentID, contentID uuid.UUID) (*types.Content, *types.Enrollment, error) {
	loaded, err := ps.contentRepo.GetByIDs(ctx, tx, []uuid.UUID{contentID})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load content: %v", domain.ErrStorageFailure, err)
	}
	if len(loaded) == 0 {
		return nil, nil, fmt.Errorf("%w: content %s", domain.ErrNotFound, contentID)
	}
	content := loaded[0]

	enrollment, err := ps.enrollmentRepo.GetByStudentAndCourse(ctx, tx, studentID, content.CourseID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load enrollment: %v", domain.ErrStorageFailure, err)
	}
	if enrollment == nil || (enrollment.Status != types.EnrollmentActive && enrollment.Status != types.EnrollmentCompleted) {
		return nil, nil, fmt.Errorf("%w: course %s", domain.ErrNotEnrolled, content.CourseID)
	}
	return content, enrollment, nil
}
