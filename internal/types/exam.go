package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Exam struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	ExamType    ExamType  `gorm:"column:exam_type;not null;default:'QUIZ'" json:"exam_type"`

	DurationMinutes int `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	TotalMarks      int `gorm:"column:total_marks;not null;default:100" json:"total_marks"`
	PassingMarks    int `gorm:"column:passing_marks;not null" json:"passing_marks"`
	MaxAttempts     int `gorm:"column:max_attempts;not null;default:3" json:"max_attempts"`

	IsPublished bool `gorm:"column:is_published;not null;default:false" json:"is_published"`
	// IsRequired gates course completion: the course cannot transition to
	// COMPLETED until this exam has a passing result.
	IsRequired bool `gorm:"column:is_required;not null;default:true" json:"is_required"`

	StartDate *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Exam) TableName() string { return "exams" }

// AvailableAt reports whether the exam can be taken at the given instant.
func (e *Exam) AvailableAt(now time.Time) bool {
	if !e.IsPublished {
		return false
	}
	if e.StartDate != nil && now.Before(*e.StartDate) {
		return false
	}
	if e.EndDate != nil && now.After(*e.EndDate) {
		return false
	}
	return true
}

type Question struct {
	ID       uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"exam_id"`
	Exam     *Exam        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExamID;references:ID" json:"exam,omitempty"`
	Text     string       `gorm:"column:text;not null" json:"text"`
	Type     QuestionType `gorm:"column:type;not null;default:'MULTIPLE_CHOICE'" json:"type"`
	Marks    int          `gorm:"column:marks;not null;default:1" json:"marks"`
	Position int          `gorm:"column:position;not null;default:0" json:"position"`

	// Identifier of the correct option (A/B/C/D/TRUE/FALSE); grading is an
	// exact case-sensitive match against this value.
	CorrectAnswer string `gorm:"column:correct_answer;not null" json:"-"`
	Explanation   string `gorm:"column:explanation" json:"explanation,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "questions" }

type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Question   *Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	Identifier string    `gorm:"column:identifier;not null" json:"identifier"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false" json:"-"`
	Position   int       `gorm:"column:position;not null;default:0" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Answer) TableName() string { return "answers" }

type ExamResult struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID    uuid.UUID `gorm:"type:uuid;not null;index:idx_exam_student_attempt,unique" json:"exam_id"`
	Exam      *Exam     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExamID;references:ID" json:"exam,omitempty"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index:idx_exam_student_attempt,unique" json:"student_id"`
	Student   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`

	AttemptNumber int           `gorm:"column:attempt_number;not null;default:1;index:idx_exam_student_attempt,unique" json:"attempt_number"`
	Status        AttemptStatus `gorm:"column:status;not null;default:'IN_PROGRESS'" json:"status"`

	// Frozen once Status is GRADED; a regrade is a new attempt.
	Score      float64 `gorm:"column:score;not null;default:0" json:"score"`
	Percentage float64 `gorm:"column:percentage;not null;default:0" json:"percentage"`
	IsPassed   bool    `gorm:"column:is_passed;not null;default:false" json:"is_passed"`

	Answers datatypes.JSON `gorm:"column:answers;type:jsonb" json:"answers,omitempty"`

	StartedAt        time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	SubmittedAt      *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	GradedAt         *time.Time `gorm:"column:graded_at" json:"graded_at,omitempty"`
	TimeTakenMinutes int        `gorm:"column:time_taken_minutes;not null;default:0" json:"time_taken_minutes"`
	Feedback         string     `gorm:"column:feedback" json:"feedback,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ExamResult) TableName() string { return "exam_results" }
