package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type CreateContentInput struct {
	CourseID         uuid.UUID
	Title            string
	Body             string
	IsMandatory      *bool
	EstimatedMinutes int
}

type UpdateContentInput struct {
	Title            *string
	Body             *string
	IsMandatory      *bool
	EstimatedMinutes *int
}

type ContentService interface {
	CreateContent(ctx context.Context, in CreateContentInput) (*types.Content, error)
	UpdateContent(ctx context.Context, contentID uuid.UUID, in UpdateContentInput) (*types.Content, error)
	DeleteContent(ctx context.Context, contentID uuid.UUID) error
	ListCourseContent(ctx context.Context, courseID uuid.UUID) ([]*types.Content, error)
	ReorderContent(ctx context.Context, courseID uuid.UUID, orderedIDs []uuid.UUID) error
}

type contentService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	contentRepo repos.ContentRepo
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	contentRepo repos.ContentRepo,
) ContentService {
	return &contentService{
		db:          db,
		log:         baseLog.With("service", "ContentService"),
		courseRepo:  courseRepo,
		contentRepo: contentRepo,
	}
}

func (cs *contentService) CreateContent(ctx context.Context, in CreateContentInput) (*types.Content, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("content title is required")
	}

	var content *types.Content
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := cs.loadOwnedCourse(ctx, tx, rd, in.CourseID)
		if err != nil {
			return err
		}
		existing, err := cs.contentRepo.ListByCourse(ctx, tx, course.ID)
		if err != nil {
			return fmt.Errorf("%w: list course content: %v", domain.ErrStorageFailure, err)
		}
		mandatory := true
		if in.IsMandatory != nil {
			mandatory = *in.IsMandatory
		}
		content = &types.Content{
			ID:               uuid.New(),
			CourseID:         course.ID,
			Title:            strings.TrimSpace(in.Title),
			Body:             in.Body,
			Order:            len(existing) + 1,
			IsMandatory:      mandatory,
			EstimatedMinutes: in.EstimatedMinutes,
		}
		if _, err := cs.contentRepo.Create(ctx, tx, []*types.Content{content}); err != nil {
			return fmt.Errorf("%w: create content: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (cs *contentService) UpdateContent(ctx context.Context, contentID uuid.UUID, in UpdateContentInput) (*types.Content, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}

	var content *types.Content
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := cs.contentRepo.GetByIDs(ctx, tx, []uuid.UUID{contentID})
		if err != nil {
			return fmt.Errorf("%w: load content: %v", domain.ErrStorageFailure, err)
		}
		if len(loaded) == 0 {
			return fmt.Errorf("%w: content %s", domain.ErrNotFound, contentID)
		}
		content = loaded[0]
		if _, err := cs.loadOwnedCourse(ctx, tx, rd, content.CourseID); err != nil {
			return err
		}
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return fmt.Errorf("content title is required")
			}
			content.Title = strings.TrimSpace(*in.Title)
		}
		if in.Body != nil {
			content.Body = *in.Body
		}
		if in.IsMandatory != nil {
			content.IsMandatory = *in.IsMandatory
		}
		if in.EstimatedMinutes != nil {
			content.EstimatedMinutes = *in.EstimatedMinutes
		}
		if err := cs.contentRepo.Save(ctx, tx, content); err != nil {
			return fmt.Errorf("%w: save content: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (cs *contentService) DeleteContent(ctx context.Context, contentID uuid.UUID) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := cs.contentRepo.GetByIDs(ctx, tx, []uuid.UUID{contentID})
		if err != nil {
			return fmt.Errorf("%w: load content: %v", domain.ErrStorageFailure, err)
		}
		if len(loaded) == 0 {
			return fmt.Errorf("%w: content %s", domain.ErrNotFound, contentID)
		}
		if _, err := cs.loadOwnedCourse(ctx, tx, rd, loaded[0].CourseID); err != nil {
			return err
		}
		if err := cs.contentRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{contentID}); err != nil {
			return fmt.Errorf("%w: delete content: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
}

func (cs *contentService) ListCourseContent(ctx context.Context, courseID uuid.UUID) ([]*types.Content, error) {
	return cs.contentRepo.ListByCourse(ctx, nil, courseID)
}

// ReorderContent rewrites positions to match orderedIDs. The id set must
// cover the course's content exactly; partial reorders are rejected so two
// items can never share a position.
func (cs *contentService) ReorderContent(ctx context.Context, courseID uuid.UUID, orderedIDs []uuid.UUID) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.loadOwnedCourse(ctx, tx, rd, courseID); err != nil {
			return err
		}
		existing, err := cs.contentRepo.ListByCourse(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("%w: list course content: %v", domain.ErrStorageFailure, err)
		}
		if len(orderedIDs) != len(existing) {
			return fmt.Errorf("reorder must include all %d content items", len(existing))
		}
		byID := make(map[uuid.UUID]*types.Content, len(existing))
		for _, c := range existing {
			byID[c.ID] = c
		}
		for i, id := range orderedIDs {
			c, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: content %s not in course", domain.ErrNotFound, id)
			}
			delete(byID, id)
			c.Order = i + 1
			if err := cs.contentRepo.Save(ctx, tx, c); err != nil {
				return fmt.Errorf("%w: save content order: %v", domain.ErrStorageFailure, err)
			}
		}
		return nil
	})
}

func (cs *contentService) loadOwnedCourse(ctx context.Context, tx *gorm.DB, rd *ctxutil.RequestData, courseID uuid.UUID) (*types.Course, error) {
	courses, err := cs.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("%w: load course: %v", domain.ErrStorageFailure, err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: course %s", domain.ErrNotFound, courseID)
	}
	course := courses[0]
	if !domain.CanManageCourse(rd.Role, rd.UserID, course) {
		return nil, fmt.Errorf("%w: not the course owner", domain.ErrPermissionDenied)
	}
	return course, nil
}
