package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ContentProgressRepo interface {
	// GetOrCreate relies on the unique (progress_id, content_id) index so
	// concurrent calls for the same pair cannot double-count.
	GetOrCreate(ctx context.Context, tx *gorm.DB, progressID, contentID uuid.UUID) (*types.ContentProgress, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.ContentProgress) error
	ListByProgress(ctx context.Context, tx *gorm.DB, progressID uuid.UUID) ([]*types.ContentProgress, error)
	CountCompletedMandatory(ctx context.Context, tx *gorm.DB, progressID uuid.UUID) (int64, error)
}

type contentProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentProgressRepo(db *gorm.DB, baseLog *logger.Logger) ContentProgressRepo {
	return &contentProgressRepo{db: db, log: baseLog.With("repo", "ContentProgressRepo")}
}

func (r *contentProgressRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, progressID, contentID uuid.UUID) (*types.ContentProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.ContentProgress{}
	if err := transaction.WithContext(ctx).
		Where("progress_id = ? AND content_id = ?", progressID, contentID).
		Attrs(&types.ContentProgress{ID: uuid.New(), ProgressID: progressID, ContentID: contentID}).
		FirstOrCreate(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *contentProgressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ContentProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *contentProgressRepo) ListByProgress(ctx context.Context, tx *gorm.DB, progressID uuid.UUID) ([]*types.ContentProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ContentProgress
	if progressID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("progress_id = ?", progressID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentProgressRepo) CountCompletedMandatory(ctx context.Context, tx *gorm.DB, progressID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ContentProgress{}).
		Joins("JOIN contents ON contents.id = content_progress.content_id").
		Where("content_progress.progress_id = ? AND content_progress.is_completed = ? AND contents.is_mandatory = ? AND contents.deleted_at IS NULL",
			progressID, true, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
