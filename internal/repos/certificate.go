package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type CertificateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Certificate) ([]*types.Certificate, error)
	GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*types.Certificate, error)
	GetByVerificationCode(ctx context.Context, tx *gorm.DB, code string) (*types.Certificate, error)
	CountByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (int64, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Certificate) ([]*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Certificate{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *certificateRepo) GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Certificate
	if err := transaction.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *certificateRepo) GetByVerificationCode(ctx context.Context, tx *gorm.DB, code string) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Certificate
	if code == "" {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).
		Where("verification_code = ?", code).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *certificateRepo) CountByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Certificate{}).
		Joins("JOIN enrollments ON enrollments.id = certificates.enrollment_id").
		Where("enrollments.student_id = ? AND enrollments.deleted_at IS NULL", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
