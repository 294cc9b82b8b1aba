package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type RateEnrollmentInput struct {
	Rating int
	Review string
}

type EnrollmentService interface {
	Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error)
	Drop(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error)
	RecordRating(ctx context.Context, enrollmentID uuid.UUID, in RateEnrollmentInput) (*types.Enrollment, error)
	ListMyEnrollments(ctx context.Context) ([]*types.Enrollment, error)
	GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error)

	// RecomputeProgress recalculates the enrollment roll-up inside the
	// caller's transaction. Progress and exam writes call this so the
	// stored percentage is never stale.
	RecomputeProgress(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error)
}

type enrollmentService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	courseRepo          repos.CourseRepo
	enrollmentRepo      repos.EnrollmentRepo
	contentRepo         repos.ContentRepo
	progressRepo        repos.ProgressRepo
	contentProgressRepo repos.ContentProgressRepo
	examRepo            repos.ExamRepo
	examResultRepo      repos.ExamResultRepo
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
	contentRepo repos.ContentRepo,
	progressRepo repos.ProgressRepo,
	contentProgressRepo repos.ContentProgressRepo,
	examRepo repos.ExamRepo,
	examResultRepo repos.ExamResultRepo,
) EnrollmentService {
	return &enrollmentService{
		db:                  db,
		log:                 baseLog.With("service", "EnrollmentService"),
		courseRepo:          courseRepo,
		enrollmentRepo:      enrollmentRepo,
		contentRepo:         contentRepo,
		progressRepo:        progressRepo,
		contentProgressRepo: contentProgressRepo,
		examRepo:            examRepo,
		examResultRepo:      examResultRepo,
	}
}

func (es *enrollmentService) Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !domain.IsStudent(rd.Role) {
		return nil, fmt.Errorf("%w: only students enroll", domain.ErrPermissionDenied)
	}

	var enrollment *types.Enrollment
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := es.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
		if err != nil {
			return fmt.Errorf("%w: load course: %v", domain.ErrStorageFailure, err)
		}
		if len(courses) == 0 {
			return fmt.Errorf("%w: course %s", domain.ErrNotFound, courseID)
		}
		course := courses[0]
		if !course.IsPublished() {
			return fmt.Errorf("%w: course is not published", domain.ErrCourseNotEnrollable)
		}

		existing, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, tx, rd.UserID, courseID)
		if err != nil {
			return fmt.Errorf("%w: load enrollment: %v", domain.ErrStorageFailure, err)
		}
		if existing != nil {
			return fmt.Errorf("%w: course %s", domain.ErrAlreadyEnrolled, courseID)
		}

		if course.MaxStudents != nil {
			active, err := es.enrollmentRepo.CountByCourse(ctx, tx, courseID,
				[]types.EnrollmentStatus{types.EnrollmentActive, types.EnrollmentCompleted})
			if err != nil {
				return fmt.Errorf("%w: count enrollments: %v", domain.ErrStorageFailure, err)
			}
			if active >= int64(*course.MaxStudents) {
				return fmt.Errorf("%w: course is full", domain.ErrCourseNotEnrollable)
			}
		}

		now := time.Now()
		enrollment = &types.Enrollment{
			ID:            uuid.New(),
			StudentID:     rd.UserID,
			CourseID:      courseID,
			Status:        types.EnrollmentActive,
			EnrolledAt:    now,
			PaymentAmount: course.Price,
		}
		if course.Price > 0 {
			enrollment.PaymentDate = &now
		}
		if _, err := es.enrollmentRepo.Create(ctx, tx, []*types.Enrollment{enrollment}); err != nil {
			return fmt.Errorf("%w: create enrollment: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	es.log.Info("student enrolled", "student_id", enrollment.StudentID, "course_id", courseID)
	return enrollment, nil
}

func (es *enrollmentService) Drop(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	var enrollment *types.Enrollment
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = es.loadOwnEnrollment(ctx, tx, rd, enrollmentID)
		if err != nil {
			return err
		}
		if enrollment.Status == types.EnrollmentCompleted {
			return fmt.Errorf("completed enrollments cannot be dropped")
		}
		if enrollment.Status == types.EnrollmentDropped {
			return nil
		}
		enrollment.Status = types.EnrollmentDropped
		if err := es.enrollmentRepo.Save(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("%w: save enrollment: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (es *enrollmentService) RecordRating(ctx context.Context, enrollmentID uuid.UUID, in RateEnrollmentInput) (*types.Enrollment, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	var enrollment *types.Enrollment
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = es.loadOwnEnrollment(ctx, tx, rd, enrollmentID)
		if err != nil {
			return err
		}
		if !domain.CanRateEnrollment(rd.UserID, enrollment) {
			return fmt.Errorf("%w: enrollment cannot be rated", domain.ErrPermissionDenied)
		}
		now := time.Now()
		rating := in.Rating
		enrollment.Rating = &rating
		enrollment.Review = strings.TrimSpace(in.Review)
		enrollment.ReviewDate = &now
		if err := es.enrollmentRepo.Save(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("%w: save enrollment: %v", domain.ErrStorageFailure, err)
		}
		return es.refreshCourseRating(ctx, tx, enrollment.CourseID)
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// refreshCourseRating recomputes the course aggregate from all stored
// enrollment ratings, rounded to two decimals.
func (es *enrollmentService) refreshCourseRating(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	avg, count, err := es.enrollmentRepo.RatingStats(ctx, tx, courseID)
	if err != nil {
		return fmt.Errorf("%w: rating stats: %v", domain.ErrStorageFailure, err)
	}
	courses, err := es.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil || len(courses) == 0 {
		return fmt.Errorf("%w: load course for rating: %v", domain.ErrStorageFailure, err)
	}
	course := courses[0]
	course.Rating = math.Round(avg*100) / 100
	course.TotalRatings = int(count)
	if err := es.courseRepo.Save(ctx, tx, course); err != nil {
		return fmt.Errorf("%w: save course rating: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

func (es *enrollmentService) ListMyEnrollments(ctx context.Context) ([]*types.Enrollment, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	return es.enrollmentRepo.ListByStudent(ctx, nil, rd.UserID)
}

func (es *enrollmentService) GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	return es.loadOwnEnrollment(ctx, nil, rd, enrollmentID)
}

func (es *enrollmentService) RecomputeProgress(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	enrollment, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, tx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load enrollment: %v", domain.ErrStorageFailure, err)
	}
	if enrollment == nil {
		return nil, fmt.Errorf("%w: course %s", domain.ErrNotEnrolled, courseID)
	}
	// Completion is terminal; the stored 100% never regresses when the
	// mandatory set changes afterwards.
	if enrollment.Status == types.EnrollmentCompleted {
		return enrollment, nil
	}

	totalMandatory, err := es.contentRepo.CountMandatoryByCourse(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: count mandatory content: %v", domain.ErrStorageFailure, err)
	}

	percentage := 100.0
	if totalMandatory > 0 {
		var completed int64
		progress, err := es.progressRepo.GetByStudentAndCourse(ctx, tx, studentID, courseID)
		if err != nil {
			return nil, fmt.Errorf("%w: load progress: %v", domain.ErrStorageFailure, err)
		}
		if progress != nil {
			completed, err = es.contentProgressRepo.CountCompletedMandatory(ctx, tx, progress.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: count completed content: %v", domain.ErrStorageFailure, err)
			}
		}
		percentage = float64(completed) / float64(totalMandatory) * 100
	}

	enrollment.ProgressPercentage = percentage
	if percentage >= 100 && enrollment.Status == types.EnrollmentActive {
		passed, err := es.allRequiredExamsPassed(ctx, tx, studentID, courseID)
		if err != nil {
			return nil, err
		}
		if passed {
			now := time.Now()
			enrollment.Status = types.EnrollmentCompleted
			enrollment.CompletedAt = &now
			es.log.Info("enrollment completed", "student_id", studentID, "course_id", courseID)
		}
	}
	if err := es.enrollmentRepo.Save(ctx, tx, enrollment); err != nil {
		return nil, fmt.Errorf("%w: save enrollment: %v", domain.ErrStorageFailure, err)
	}
	return enrollment, nil
}

func (es *enrollmentService) allRequiredExamsPassed(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (bool, error) {
	required, err := es.examRepo.ListRequiredByCourse(ctx, tx, courseID)
	if err != nil {
		return false, fmt.Errorf("%w: list required exams: %v", domain.ErrStorageFailure, err)
	}
	for _, exam := range required {
		passed, err := es.examResultRepo.HasPassing(ctx, tx, exam.ID, studentID)
		if err != nil {
			return false, fmt.Errorf("%w: check passing result: %v", domain.ErrStorageFailure, err)
		}
		if !passed {
			return false, nil
		}
	}
	return true, nil
}

func (es *enrollmentService) loadOwnEnrollment(ctx context.Context, tx *gorm.DB, rd *ctxutil.RequestData, enrollmentID uuid.UUID) (*types.Enrollment, error) {
	rows, err := es.enrollmentRepo.GetByIDs(ctx, tx, []uuid.UUID{enrollmentID})
	if err != nil {
		return nil, fmt.Errorf("%w: load enrollment: %v", domain.ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: enrollment %s", domain.ErrNotFound, enrollmentID)
	}
	enrollment := rows[0]
	if enrollment.StudentID != rd.UserID && !domain.IsAdmin(rd.Role) {
		return nil, fmt.Errorf("%w: not the enrollment owner", domain.ErrPermissionDenied)
	}
	return enrollment, nil
}
