package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress is created lazily on the first content access for a
// (student, course) pair.
type Progress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_student_course,unique" json:"student_id"`
	Student   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_student_course,unique" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`

	TotalTimeSpentMinutes int `gorm:"column:total_time_spent_minutes;not null;default:0" json:"total_time_spent_minutes"`

	// Lookup reference only; deleting the content must not cascade here.
	LastContentID *uuid.UUID `gorm:"type:uuid" json:"last_content_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Progress) TableName() string { return "progress" }

type ContentProgress struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgressID uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_content,unique" json:"progress_id"`
	Progress   *Progress `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgressID;references:ID" json:"progress,omitempty"`
	ContentID  uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_content,unique" json:"content_id"`
	Content    *Content  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContentID;references:ID" json:"content,omitempty"`

	// IsCompleted is monotonic: once true it is never reset, and
	// CompletedAt keeps the timestamp of the first completion.
	IsCompleted      bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	TimeSpentMinutes int        `gorm:"column:time_spent_minutes;not null;default:0" json:"time_spent_minutes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ContentProgress) TableName() string { return "content_progress" }
