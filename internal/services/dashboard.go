package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type StudentDashboard struct {
	ActiveEnrollments    int64   `json:"active_enrollments"`
	CompletedEnrollments int64   `json:"completed_enrollments"`
	Certificates         int64   `json:"certificates"`
	ExamAttempts         int64   `json:"exam_attempts"`
	ExamsPassed          int64   `json:"exams_passed"`
	AverageProgress      float64 `json:"average_progress"`
}

type DashboardService interface {
	StudentDashboard(ctx context.Context) (*StudentDashboard, error)
}

type dashboardService struct {
	db              *gorm.DB
	log             *logger.Logger
	enrollmentRepo  repos.EnrollmentRepo
	certificateRepo repos.CertificateRepo
	examResultRepo  repos.ExamResultRepo
}

func NewDashboardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	enrollmentRepo repos.EnrollmentRepo,
	certificateRepo repos.CertificateRepo,
	examResultRepo repos.ExamResultRepo,
) DashboardService {
	return &dashboardService{
		db:              db,
		log:             baseLog.With("service", "DashboardService"),
		enrollmentRepo:  enrollmentRepo,
		certificateRepo: certificateRepo,
		examResultRepo:  examResultRepo,
	}
}

// StudentDashboard fans the independent aggregate reads out over an
// errgroup; each lands in its own field so there is no shared state.
func (ds *dashboardService) StudentDashboard(ctx context.Context) (*StudentDashboard, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	studentID := rd.UserID

	out := &StudentDashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := ds.enrollmentRepo.CountByStudent(gctx, nil, studentID, []types.EnrollmentStatus{types.EnrollmentActive})
		if err != nil {
			return fmt.Errorf("count active enrollments: %w", err)
		}
		out.ActiveEnrollments = n
		return nil
	})
	g.Go(func() error {
		n, err := ds.enrollmentRepo.CountByStudent(gctx, nil, studentID, []types.EnrollmentStatus{types.EnrollmentCompleted})
		if err != nil {
			return fmt.Errorf("count completed enrollments: %w", err)
		}
		out.CompletedEnrollments = n
		return nil
	})
	g.Go(func() error {
		n, err := ds.certificateRepo.CountByStudent(gctx, nil, studentID)
		if err != nil {
			return fmt.Errorf("count certificates: %w", err)
		}
		out.Certificates = n
		return nil
	})
	g.Go(func() error {
		results, err := ds.examResultRepo.ListByStudent(gctx, nil, studentID)
		if err != nil {
			return fmt.Errorf("list exam results: %w", err)
		}
		out.ExamAttempts = int64(len(results))
		for _, r := range results {
			if r.IsPassed {
				out.ExamsPassed++
			}
		}
		return nil
	})
	g.Go(func() error {
		avg, err := ds.enrollmentRepo.AverageProgressByStudent(gctx, nil, studentID)
		if err != nil {
			return fmt.Errorf("average progress: %w", err)
		}
		out.AverageProgress = avg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return out, nil
}
