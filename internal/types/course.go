package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	Icon        string         `gorm:"column:icon" json:"icon,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Category) TableName() string { return "categories" }

type Course struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string       `gorm:"column:title;not null" json:"title"`
	Slug        string       `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description string       `gorm:"column:description" json:"description"`
	TeacherID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher     *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	CategoryID  *uuid.UUID   `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category    *Category    `gorm:"constraint:OnDelete:SET NULL;foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	Level       CourseLevel  `gorm:"column:level;not null;default:'BEGINNER'" json:"level"`
	Status      CourseStatus `gorm:"column:status;not null;default:'DRAFT';index" json:"status"`

	ThumbnailURL  string  `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	Price         float64 `gorm:"column:price;not null;default:0" json:"price"`
	DurationHours int     `gorm:"column:duration_hours;not null;default:0" json:"duration_hours"`
	MaxStudents   *int    `gorm:"column:max_students" json:"max_students,omitempty"`

	Prerequisites      string `gorm:"column:prerequisites" json:"prerequisites,omitempty"`
	LearningObjectives string `gorm:"column:learning_objectives" json:"learning_objectives,omitempty"`
	IsFeatured         bool   `gorm:"column:is_featured;not null;default:false" json:"is_featured"`

	// Derived from enrollment ratings, written only by the enrollment service.
	Rating       float64 `gorm:"column:rating;not null;default:0" json:"rating"`
	TotalRatings int     `gorm:"column:total_ratings;not null;default:0" json:"total_ratings"`

	PublishedAt *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) IsPublished() bool { return c.Status == CoursePublished }

type Content struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title    string    `gorm:"column:title;not null" json:"title"`
	Body     string    `gorm:"column:body" json:"body,omitempty"`

	// Display position; ties break on creation time.
	Order            int  `gorm:"column:position;not null;default:0" json:"order"`
	// No gorm default tag: with one, GORM omits a zero-valued (false) field
	// on insert and the column default silently overrides the assigned value.
	IsMandatory      bool `gorm:"column:is_mandatory;not null" json:"is_mandatory"`
	EstimatedMinutes int  `gorm:"column:estimated_minutes;not null;default:0" json:"estimated_minutes"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Content) TableName() string { return "contents" }
