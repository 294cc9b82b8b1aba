package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type CreateExamInput struct {
	CourseID        uuid.UUID
	Title           string
	Description     string
	ExamType        types.ExamType
	DurationMinutes int
	TotalMarks      int
	PassingMarks    int
	MaxAttempts     *int
	IsRequired      *bool
	StartDate       *time.Time
	EndDate         *time.Time
}

type CreateQuestionInput struct {
	Text          string
	Type          types.QuestionType
	Marks         int
	CorrectAnswer string
	Explanation   string
	Options       []CreateAnswerInput
}

type CreateAnswerInput struct {
	Identifier string
	Text       string
}

type ExamService interface {
	CreateExam(ctx context.Context, in CreateExamInput) (*types.Exam, error)
	PublishExam(ctx context.Context, examID uuid.UUID) (*types.Exam, error)
	AddQuestions(ctx context.Context, examID uuid.UUID, questions []CreateQuestionInput) ([]*types.Question, error)
	ListCourseExams(ctx context.Context, courseID uuid.UUID) ([]*types.Exam, error)
	ListExamQuestions(ctx context.Context, examID uuid.UUID) ([]*types.Question, error)

	StartAttempt(ctx context.Context, examID uuid.UUID) (*types.ExamResult, error)
	SubmitAndGrade(ctx context.Context, resultID uuid.UUID, answers map[uuid.UUID]string) (*types.ExamResult, error)
	ListMyResults(ctx context.Context, examID uuid.UUID) ([]*types.ExamResult, error)
}

type examService struct {
	db                *gorm.DB
	log               *logger.Logger
	courseRepo        repos.CourseRepo
	enrollmentRepo    repos.EnrollmentRepo
	examRepo          repos.ExamRepo
	questionRepo      repos.QuestionRepo
	answerRepo        repos.AnswerRepo
	examResultRepo    repos.ExamResultRepo
	enrollmentService EnrollmentService
}

func NewExamService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
	examRepo repos.ExamRepo,
	questionRepo repos.QuestionRepo,
	answerRepo repos.AnswerRepo,
	examResultRepo repos.ExamResultRepo,
	enrollmentService EnrollmentService,
) ExamService {
	return &examService{
		db:                db,
		log:               baseLog.With("service", "ExamService"),
		courseRepo:        courseRepo,
		enrollmentRepo:    enrollmentRepo,
		examRepo:          examRepo,
		questionRepo:      questionRepo,
		answerRepo:        answerRepo,
		examResultRepo:    examResultRepo,
		enrollmentService: enrollmentService,
	}
}

func (xs *examService) CreateExam(ctx context.Context, in CreateExamInput) (*types.Exam, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("exam title is required")
	}
	if in.TotalMarks <= 0 {
		return nil, fmt.Errorf("total marks must be positive")
	}
	if in.PassingMarks < 0 || in.PassingMarks > in.TotalMarks {
		return nil, fmt.Errorf("passing marks must be within total marks")
	}

	var exam *types.Exam
	err := xs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := xs.loadOwnedCourse(ctx, tx, rd, in.CourseID); err != nil {
			return err
		}
		examType := in.ExamType
		if examType == "" {
			examType = types.ExamQuiz
		}
		maxAttempts := 3
		if in.MaxAttempts != nil && *in.MaxAttempts > 0 {
			maxAttempts = *in.MaxAttempts
		}
		required := true
		if in.IsRequired != nil {
			required = *in.IsRequired
		}
		exam = &types.Exam{
			ID:              uuid.New(),
			CourseID:        in.CourseID,
			Title:           strings.TrimSpace(in.Title),
			Description:     in.Description,
			ExamType:        examType,
			DurationMinutes: in.DurationMinutes,
			TotalMarks:      in.TotalMarks,
			PassingMarks:    in.PassingMarks,
			MaxAttempts:     maxAttempts,
			IsRequired:      required,
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
		}
		if _, err := xs.examRepo.Create(ctx, tx, []*types.Exam{exam}); err != nil {
			return fmt.Errorf("%w: create exam: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (xs *examService) PublishExam(ctx context.Context, examID uuid.UUID) (*types.Exam, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	var exam *types.Exam
	err := xs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		exam, err = xs.loadExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if _, err := xs.loadOwnedCourse(ctx, tx, rd, exam.CourseID); err != nil {
			return err
		}
		if exam.IsPublished {
			return nil
		}
		exam.IsPublished = true
		if err := xs.examRepo.Save(ctx, tx, exam); err != nil {
			return fmt.Errorf("%w: save exam: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (xs *examService) AddQuestions(ctx context.Context, examID uuid.UUID, questions []CreateQuestionInput) ([]*types.Question, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions given")
	}

	var created []*types.Question
	err := xs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exam, err := xs.loadExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if _, err := xs.loadOwnedCourse(ctx, tx, rd, exam.CourseID); err != nil {
			return err
		}
		existing, err := xs.questionRepo.ListByExam(ctx, tx, examID)
		if err != nil {
			return fmt.Errorf("%w: list questions: %v", domain.ErrStorageFailure, err)
		}

		var options []*types.Answer
		for i, q := range questions {
			if strings.TrimSpace(q.Text) == "" {
				return fmt.Errorf("question text is required")
			}
			if strings.TrimSpace(q.CorrectAnswer) == "" {
				return fmt.Errorf("question correct answer is required")
			}
			qType := q.Type
			if qType == "" {
				qType = types.QuestionMultipleChoice
			}
			marks := q.Marks
			if marks <= 0 {
				marks = 1
			}
			question := &types.Question{
				ID:            uuid.New(),
				ExamID:        examID,
				Text:          q.Text,
				Type:          qType,
				Marks:         marks,
				Position:      len(existing) + i + 1,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			}
			created = append(created, question)
			for j, opt := range q.Options {
				options = append(options, &types.Answer{
					ID:         uuid.New(),
					QuestionID: question.ID,
					Identifier: opt.Identifier,
					Text:       opt.Text,
					IsCorrect:  opt.Identifier == q.CorrectAnswer,
					Position:   j + 1,
				})
			}
		}
		if _, err := xs.questionRepo.Create(ctx, tx, created); err != nil {
			return fmt.Errorf("%w: create questions: %v", domain.ErrStorageFailure, err)
		}
		if _, err := xs.answerRepo.Create(ctx, tx, options); err != nil {
			return fmt.Errorf("%w: create answer options: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (xs *examService) ListCourseExams(ctx context.Context, courseID uuid.UUID) ([]*types.Exam, error) {
	return xs.examRepo.ListByCourse(ctx, nil, courseID)
}

func (xs *examService) ListExamQuestions(ctx context.Context, examID uuid.UUID) ([]*types.Question, error) {
	return xs.questionRepo.ListByExam(ctx, nil, examID)
}

func (xs *examService) StartAttempt(ctx context.Context, examID uuid.UUID) (*types.ExamResult, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !domain.IsStudent(rd.Role) {
		return nil, fmt.Errorf("%w: only students take exams", domain.ErrPermissionDenied)
	}

	var result *types.ExamResult
	err := xs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exam, err := xs.loadExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if !exam.AvailableAt(time.Now()) {
			return fmt.Errorf("%w: exam %s", domain.ErrExamNotAvailable, examID)
		}

		enrollment, err := xs.enrollmentRepo.GetByStudentAndCourse(ctx, tx, rd.UserID, exam.CourseID)
		if err != nil {
			return fmt.Errorf("%w: load enrollment: %v", domain.ErrStorageFailure, err)
		}
		if enrollment == nil || (enrollment.Status != types.EnrollmentActive && enrollment.Status != types.EnrollmentCompleted) {
			return fmt.Errorf("%w: course %s", domain.ErrNotEnrolled, exam.CourseID)
		}

		attempts, err := xs.examResultRepo.CountByExamAndStudent(ctx, tx, examID, rd.UserID)
		if err != nil {
			return fmt.Errorf("%w: count attempts: %v", domain.ErrStorageFailure, err)
		}
		if attempts >= int64(exam.MaxAttempts) {
			return fmt.Errorf("%w: %d of %d attempts used", domain.ErrMaxAttemptsExceeded, attempts, exam.MaxAttempts)
		}

		result = &types.ExamResult{
			ID:            uuid.New(),
			ExamID:        examID,
			StudentID:     rd.UserID,
			AttemptNumber: int(attempts) + 1,
			Status:        types.AttemptInProgress,
			StartedAt:     time.Now(),
		}
		if _, err := xs.examResultRepo.Create(ctx, tx, []*types.ExamResult{result}); err != nil {
			return fmt.Errorf("%w: create attempt: %v", domain.ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitAndGrade scores the attempt in one step. Every question counts
// equally regardless of its stored marks value; the score is the fraction of
// questions answered with an exact identifier match, scaled to the exam's
// total. An exam with no questions grades to zero and fails.
func (xs *examService) SubmitAndGrade(ctx context.Context, resultID uuid.UUID, answers map[uuid.UUID]string) (*types.ExamResult, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}

	var result *types.ExamResult
	err := xs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := xs.examResultRepo.GetByIDs(ctx, tx, []uuid.UUID{resultID})
		if err != nil {
			return fmt.Errorf("%w: load attempt: %v", domain.ErrStorageFailure, err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("%w: attempt %s", domain.ErrNotFound, resultID)
		}
		result = rows[0]
		if result.StudentID != rd.UserID {
			return fmt.Errorf("%w: not the attempt owner", domain.ErrPermissionDenied)
		}
		if result.Status == types.AttemptGraded {
			return fmt.Errorf("%w: attempt %s", domain.ErrAlreadyGraded, resultID)
		}

		exam, err := xs.loadExam(ctx, tx, result.ExamID)
		if err != nil {
			return err
		}
		questions, err := xs.questionRepo.ListByExam(ctx, tx, exam.ID)
		if err != nil {
			return fmt.Errorf("%w: list questions: %v", domain.ErrStorageFailure, err)
		}

		correct, total := 0, len(questions)
		for _, q := range questions {
			if given, ok := answers[q.ID]; ok && given == q.CorrectAnswer {
				correct++
			}
		}

		var score, percentage float64
		if total > 0 {
			score = float64(correct) / float64(total) * float64(exam.TotalMarks)
			percentage = score / float64(exam.TotalMarks) * 100
		}

		raw, err := json.Marshal(encodeAnswers(answers))
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}

		now := time.Now()
		result.Status = types.AttemptGraded
		result.Score = score
		result.Percentage = percentage
		result.IsPassed = total > 0 && score >= float64(exam.PassingMarks)
		result.Answers = datatypes.JSON(raw)
		result.SubmittedAt = &now
		result.GradedAt = &now
		result.TimeTakenMinutes = int(now.Sub(result.StartedAt).Minutes())
		if err := xs.examResultRepo.Save(ctx, tx, result); err != nil {
			return fmt.Errorf("%w: save attempt: %v", domain.ErrStorageFailure, err)
		}

		// A passing result on a required exam may complete the enrollment.
		_, err = xs.enrollmentService.RecomputeProgress(ctx, tx, result.StudentID, exam.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	xs.log.Info("attempt graded",
		"student_id", result.StudentID,
		"exam_id", result.ExamID,
		"attempt", result.AttemptNumber,
		"passed", result.IsPassed)
	return result, nil
}

func (xs *examService) ListMyResults(ctx context.Context, examID uuid.UUID) ([]*types.ExamResult, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("%w: no principal in request context", domain.ErrPermissionDenied)
	}
	if examID == uuid.Nil {
		return xs.examResultRepo.ListByStudent(ctx, nil, rd.UserID)
	}
	return xs.examResultRepo.ListByExamAndStudent(ctx, nil, examID, rd.UserID)
}

func encodeAnswers(answers map[uuid.UUID]string) map[string]string {
	out := make(map[string]string, len(answers))
	for id, v := range answers {
		out[id.String()] = v
	}
	return out
}

func (xs *examService) loadExam(ctx context.Context, tx *gorm.DB, examID uuid.UUID) (*types.Exam, error) {
	exams, err := xs.examRepo.GetByIDs(ctx, tx, []uuid.UUID{examID})
	if err != nil {
		return nil, fmt.Errorf("%w: load exam: %v", domain.ErrStorageFailure, err)
	}
	if len(exams) == 0 {
		return nil, fmt.Errorf("%w: exam %s", domain.ErrNotFound, examID)
	}
	return exams[0], nil
}

func (xs *examService) loadOwnedCourse(ctx context.Context, tx *gorm.DB, rd *ctxutil.RequestData, courseID uuid.UUID) (*types.Course, error) {
	courses, err := xs.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
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
