package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ProgressRepo interface {
	// GetOrCreate resolves the lazy one-per-(student, course) row.
	GetOrCreate(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Progress, error)
	GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Progress, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Progress) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.Progress{}
	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Attrs(&types.Progress{ID: uuid.New(), StudentID: studentID, CourseID: courseID}).
		FirstOrCreate(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *progressRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Progress
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

func (r *progressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Progress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}
