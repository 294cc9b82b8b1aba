package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ExamRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Exam) ([]*types.Exam, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Exam) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Exam, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Exam, error)
	ListRequiredByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Exam, error)
}

type examRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamRepo(db *gorm.DB, baseLog *logger.Logger) ExamRepo {
	return &examRepo{db: db, log: baseLog.With("repo", "ExamRepo")}
}

func (r *examRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Exam) ([]*types.Exam, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Exam{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *examRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Exam) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *examRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Exam, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Exam
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

func (r *examRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Exam, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Exam
	if courseID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examRepo) ListRequiredByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Exam, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Exam
	if courseID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("course_id = ? AND is_required = ?", courseID, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
