package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ExamResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ExamResult) ([]*types.ExamResult, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.ExamResult) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ExamResult, error)
	CountByExamAndStudent(ctx context.Context, tx *gorm.DB, examID, studentID uuid.UUID) (int64, error)
	HasPassing(ctx context.Context, tx *gorm.DB, examID, studentID uuid.UUID) (bool, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.ExamResult, error)
	ListByExamAndStudent(ctx context.Context, tx *gorm.DB, examID, studentID uuid.UUID) ([]*types.ExamResult, error)
}

type examResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamResultRepo(db *gorm.DB, baseLog *logger.Logger) ExamResultRepo {
	return &examResultRepo{db: db, log: baseLog.With("repo", "ExamResultRepo")}
}

func (r *examResultRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ExamResult) ([]*types.ExamResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ExamResult{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *examResultRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ExamResult) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *examResultRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ExamResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ExamResult
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

func (r *examResultRepo) CountByExamAndStudent(ctx context.Context, tx *gorm.DB, examID, studentID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ExamResult{}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *examResultRepo) HasPassing(ctx context.Context, tx *gorm.DB, examID, studentID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ExamResult{}).
		Where("exam_id = ? AND student_id = ? AND is_passed = ?", examID, studentID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *examResultRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.ExamResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ExamResult
	if studentID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examResultRepo) ListByExamAndStudent(ctx context.Context, tx *gorm.DB, examID, studentID uuid.UUID) ([]*types.ExamResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ExamResult
	if err := transaction.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Order("attempt_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
