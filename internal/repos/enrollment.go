package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Enrollment) ([]*types.Enrollment, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Enrollment) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Enrollment, error)
	CountByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, statuses []types.EnrollmentStatus) (int64, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, statuses []types.EnrollmentStatus) (int64, error)
	RatingStats(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (avg float64, count int64, err error)
	AverageProgressByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (float64, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Enrollment) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Enrollment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *enrollmentRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Enrollment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *enrollmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Enrollment
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Enrollment
	if studentID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) CountByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, statuses []types.EnrollmentStatus) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("student_id = ?", studentID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, statuses []types.EnrollmentStatus) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("course_id = ?", courseID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepo) RatingStats(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (float64, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row struct {
		Avg   *float64
		Count int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Select("AVG(rating) AS avg, COUNT(rating) AS count").
		Where("course_id = ? AND rating IS NOT NULL", courseID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	if row.Avg == nil {
		return 0, 0, nil
	}
	return *row.Avg, row.Count, nil
}

func (r *enrollmentRepo) AverageProgressByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row struct {
		Avg *float64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Select("AVG(progress_percentage) AS avg").
		Where("student_id = ? AND status IN ?", studentID, []types.EnrollmentStatus{types.EnrollmentActive, types.EnrollmentCompleted}).
		Scan(&row).Error; err != nil {
		return 0, err
	}
	if row.Avg == nil {
		return 0, nil
	}
	return *row.Avg, nil
}
