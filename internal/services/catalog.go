package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type CreateCourseInput struct {
	Title              string
	Description        string
	CategoryID         *uuid.UUID
	Level              types.CourseLevel
	Price              float64
	DurationHours      int
	MaxStudents        *int
	Prerequisites      string
	LearningObjectives string
}

type UpdateCourseInput struct {
	Title              *string
	Description        *string
	CategoryID         *uuid.UUID
	Level              *types.CourseLevel
	ThumbnailURL       *string
	Price              *float64
	DurationHours      *int
	MaxStudents        *int
	Prerequisites      *string
	LearningObjectives *string
}

type CatalogService interface {
	CreateCategory(ctx context.Context, category *types.Category) error
	ListCategories(ctx context.Context) ([]*types.Category, error)

	CreateCourse(ctx context.Context, in CreateCourseInput) (*types.Course, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, in UpdateCourseInput) (*types.Course, error)
	PublishCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ArchiveCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*types.Course, error)
	GetCourseByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ListPublishedCourses(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, error)
	ListOwnCourses(ctx context.Context) ([]*types.Course, error)
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	categoryRepo repos.CategoryRepo
	courseRepo   repos.CourseRepo
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	categoryRepo repos.CategoryRepo,
	courseRepo repos.CourseRepo,
) CatalogService {
	return &catalogService{
		db:           db,
		log:          baseLog.With("service", "CatalogService"),
		categoryRepo: categoryRepo,
		courseRepo:   courseRepo,
	}
}

func (cs *catalogService) CreateCategory(ctx context.Context, category *types.Category) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !domain.CanManageCategories(rd.Role) {
		return fmt.Errorf("%w: only admins manage categories", domain.ErrPermissionDenied)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category.ID = uuid.New()
		if category.Slug == "" {
			slug, err := uniqueSlug(ctx, category.Name, func(s string) (bool, error) {
				return cs.categoryRepo.ExistsBySlug(ctx, tx, s)
			})
			if err != nil {
				return err
			}
			category.Slug = slug
		}
		if _, err := cs.categoryRepo.Create(ctx, tx, []*types.Category{category}); err != nil {
			return fmt.Errorf("%w: create category: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
}

func (cs *catalogService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	return cs.categoryRepo.List(ctx, nil)
}

func (cs *catalogService) CreateCourse(ctx context.Context, in CreateCourseInput) (*types.Course, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !domain.CanAuthorCourses(rd.Role) {
		return nil, fmt.Errorf("%w: only teachers create courses", domain.ErrPermissionDenied)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("course title is required")
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("course price must not be negative")
	}

	level := in.Level
	if level == "" {
		level = types.LevelBeginner
	}

	var course *types.Course
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(ctx, in.Title, func(s string) (bool, error) {
			return cs.courseRepo.ExistsBySlug(ctx, tx, s)
		})
		if err != nil {
			return err
		}
		course = &types.Course{
			ID:                 uuid.New(),
			Title:              strings.TrimSpace(in.Title),
			Slug:               slug,
			Description:        in.Description,
			TeacherID:          rd.UserID,
			CategoryID:         in.CategoryID,
			Level:              level,
			Status:             types.CourseDraft,
			Price:              in.Price,
			DurationHours:      in.DurationHours,
			MaxStudents:        in.MaxStudents,
			Prerequisites:      in.Prerequisites,
			LearningObjectives: in.LearningObjectives,
		}
		if _, err := cs.courseRepo.Create(ctx, tx, []*types.Course{course}); err != nil {
			return fmt.Errorf("%w: create course: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// UpdateCourse patches mutable fields. The slug never changes, even when the
// title does.
func (cs *catalogService) UpdateCourse(ctx context.Context, courseID uuid.UUID, in UpdateCourseInput) (*types.Course, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}

	var course *types.Course
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := cs.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
		if err != nil {
			return fmt.Errorf("%w: load course: %v", domain.ErrStorageFailure, err)
		}
		if len(courses) == 0 {
			return fmt.Errorf("%w: course %s", domain.ErrNotFound, courseID)
		}
		course = courses[0]
		if !domain.CanManageCourse(rd.Role, rd.UserID, course) {
			return fmt.Errorf("%w: not the course owner", domain.ErrPermissionDenied)
		}
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return fmt.Errorf("course title is required")
			}
			course.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			course.Description = *in.Description
		}
		if in.CategoryID != nil {
			course.CategoryID = in.CategoryID
		}
		if in.Level != nil {
			course.Level = *in.Level
		}
		if in.ThumbnailURL != nil {
			course.ThumbnailURL = *in.ThumbnailURL
		}
		if in.Price != nil {
			if *in.Price < 0 {
				return fmt.Errorf("course price must not be negative")
			}
			course.Price = *in.Price
		}
		if in.DurationHours != nil {
			course.DurationHours = *in.DurationHours
		}
		if in.MaxStudents != nil {
			course.MaxStudents = in.MaxStudents
		}
		if in.Prerequisites != nil {
			course.Prerequisites = *in.Prerequisites
		}
		if in.LearningObjectives != nil {
			course.LearningObjectives = *in.LearningObjectives
		}
		if err := cs.courseRepo.Save(ctx, tx, course); err != nil {
			return fmt.Errorf("%w: save course: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (cs *catalogService) PublishCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	return cs.setCourseStatus(ctx, courseID, types.CoursePublished)
}

func (cs *catalogService) ArchiveCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	return cs.setCourseStatus(ctx, courseID, types.CourseArchived)
}

func (cs *catalogService) setCourseStatus(ctx context.Context, courseID uuid.UUID, status types.CourseStatus) (*types.Course, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	var course *types.Course
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := cs.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
		if err != nil {
			return fmt.Errorf("%w: load course: %v", domain.ErrStorageFailure, err)
		}
		if len(courses) == 0 {
			return fmt.Errorf("%w: course %s", domain.ErrNotFound, courseID)
		}
		course = courses[0]
		if !domain.CanManageCourse(rd.Role, rd.UserID, course) {
			return fmt.Errorf("%w: not the course owner", domain.ErrPermissionDenied)
		}
		if course.Status == status {
			return nil
		}
		course.Status = status
		if status == types.CoursePublished && course.PublishedAt == nil {
			now := time.Now()
			course.PublishedAt = &now
		}
		if err := cs.courseRepo.Save(ctx, tx, course); err != nil {
			return fmt.Errorf("%w: save course: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (cs *catalogService) GetCourseBySlug(ctx context.Context, slug string) (*types.Course, error) {
	course, err := cs.courseRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: load course: %v", domain.ErrStorageFailure, err)
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course %q", domain.ErrNotFound, slug)
	}
	return course, nil
}

func (cs *catalogService) GetCourseByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("%w: load course: %v", domain.ErrStorageFailure, err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: course %s", domain.ErrNotFound, courseID)
	}
	return courses[0], nil
}

func (cs *catalogService) ListPublishedCourses(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, error) {
	filter.Status = types.CoursePublished
	return cs.courseRepo.List(ctx, nil, filter)
}

func (cs *catalogService) ListOwnCourses(ctx context.Context) ([]*types.Course, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !domain.CanAuthorCourses(rd.Role) {
		return nil, fmt.Errorf("%w: only teachers list own courses", domain.ErrPermissionDenied)
	}
	teacherID := rd.UserID
	return cs.courseRepo.List(ctx, nil, repos.CourseFilter{TeacherID: &teacherID})
}

// uniqueSlug derives a URL identifier from the title and suffixes it until
// the exists probe clears. Slugs are immutable once stored.
func uniqueSlug(ctx context.Context, title string, exists func(string) (bool, error)) (string, error) {
	base := slugify(title)
	if base == "" {
		base = uuid.New().String()[:8]
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := exists(slug)
		if err != nil {
			return "", fmt.Errorf("%w: probe slug: %v", domain.ErrStorageFailure, err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
