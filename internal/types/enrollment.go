package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Enrollment struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID        `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"student_id"`
	Student   *User            `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"course_id"`
	Course    *Course          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Status    EnrollmentStatus `gorm:"column:status;not null;default:'ACTIVE';index" json:"status"`

	// EnrolledAt is set once at creation; CompletedAt exactly once on the
	// ACTIVE -> COMPLETED transition.
	EnrolledAt  time.Time  `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	ProgressPercentage float64    `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	LastAccessedAt     *time.Time `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`

	PaymentAmount float64    `gorm:"column:payment_amount;not null;default:0" json:"payment_amount"`
	PaymentDate   *time.Time `gorm:"column:payment_date" json:"payment_date,omitempty"`

	Rating     *int       `gorm:"column:rating" json:"rating,omitempty"`
	Review     string     `gorm:"column:review" json:"review,omitempty"`
	ReviewDate *time.Time `gorm:"column:review_date" json:"review_date,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }

type Certificate struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"enrollment_id"`
	Enrollment   *Enrollment `gorm:"constraint:OnDelete:CASCADE;foreignKey:EnrollmentID;references:ID" json:"enrollment,omitempty"`

	CertificateNumber string `gorm:"column:certificate_number;not null;uniqueIndex" json:"certificate_number"`
	VerificationCode  string `gorm:"column:verification_code;not null;uniqueIndex" json:"verification_code"`

	IssuedDate time.Time `gorm:"column:issued_date;not null" json:"issued_date"`
	FileURL    string    `gorm:"column:file_url" json:"file_url,omitempty"`
	IsVerified bool      `gorm:"column:is_verified;not null;default:true" json:"is_verified"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Certificate) TableName() string { return "certificates" }
