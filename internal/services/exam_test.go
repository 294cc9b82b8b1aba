package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func (e *testEnv) seedExam(t *testing.T, teacher *types.User, course *types.Course, in CreateExamInput) (*types.Exam, []*types.Question) {
	t.Helper()
	in.CourseID = course.ID
	exam, err := e.exam.CreateExam(asUser(teacher), in)
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	questions, err := e.exam.AddQuestions(asUser(teacher), exam.ID, []CreateQuestionInput{
		{Text: "Capital of France?", CorrectAnswer: "A", Options: []CreateAnswerInput{
			{Identifier: "A", Text: "Paris"},
			{Identifier: "B", Text: "Lyon"},
		}},
		{Text: "Largest ocean?", CorrectAnswer: "C", Options: []CreateAnswerInput{
			{Identifier: "A", Text: "Atlantic"},
			{Identifier: "B", Text: "Indian"},
			{Identifier: "C", Text: "Pacific"},
		}},
	})
	if err != nil {
		t.Fatalf("add questions: %v", err)
	}
	if _, err := e.exam.PublishExam(asUser(teacher), exam.ID); err != nil {
		t.Fatalf("publish exam: %v", err)
	}
	return exam, questions
}

func TestAttemptNumberingAndLimit(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)

	maxAttempts := 2
	exam, _ := env.seedExam(t, teacher, course, CreateExamInput{
		Title:        "Quiz",
		TotalMarks:   100,
		PassingMarks: 50,
		MaxAttempts:  &maxAttempts,
	})

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	first, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if first.AttemptNumber != 1 {
		t.Fatalf("expected attempt 1, got %d", first.AttemptNumber)
	}
	second, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if second.AttemptNumber != 2 {
		t.Fatalf("expected attempt 2, got %d", second.AttemptNumber)
	}
	if _, err := env.exam.StartAttempt(asUser(student), exam.ID); !errors.Is(err, domain.ErrMaxAttemptsExceeded) {
		t.Fatalf("expected ErrMaxAttemptsExceeded, got %v", err)
	}
}

func TestStartAttemptRequiresAvailability(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// Unpublished exam
	draft, err := env.exam.CreateExam(asUser(teacher), CreateExamInput{
		CourseID:     course.ID,
		Title:        "Draft quiz",
		TotalMarks:   10,
		PassingMarks: 5,
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if _, err := env.exam.StartAttempt(asUser(student), draft.ID); !errors.Is(err, domain.ErrExamNotAvailable) {
		t.Fatalf("expected ErrExamNotAvailable for unpublished exam, got %v", err)
	}

	// Published but window closed
	past := time.Now().Add(-time.Hour)
	closed, err := env.exam.CreateExam(asUser(teacher), CreateExamInput{
		CourseID:     course.ID,
		Title:        "Closed quiz",
		TotalMarks:   10,
		PassingMarks: 5,
		EndDate:      &past,
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if _, err := env.exam.PublishExam(asUser(teacher), closed.ID); err != nil {
		t.Fatalf("publish exam: %v", err)
	}
	if _, err := env.exam.StartAttempt(asUser(student), closed.ID); !errors.Is(err, domain.ErrExamNotAvailable) {
		t.Fatalf("expected ErrExamNotAvailable for closed window, got %v", err)
	}
}

func TestStartAttemptRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	exam, _ := env.seedExam(t, teacher, course, CreateExamInput{
		Title:        "Quiz",
		TotalMarks:   10,
		PassingMarks: 5,
	})

	if _, err := env.exam.StartAttempt(asUser(student), exam.ID); !errors.Is(err, domain.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestGradingScalesMarksToTotal(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	exam, questions := env.seedExam(t, teacher, course, CreateExamInput{
		Title:        "Quiz",
		TotalMarks:   100,
		PassingMarks: 60,
	})

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// All correct
	attempt, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, map[uuid.UUID]string{
		questions[0].ID: "A",
		questions[1].ID: "C",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 100 || result.Percentage != 100 || !result.IsPassed {
		t.Fatalf("expected full marks pass, got score=%v pct=%v passed=%v", result.Score, result.Percentage, result.IsPassed)
	}
	if result.Status != types.AttemptGraded || result.GradedAt == nil {
		t.Fatal("expected graded status with timestamp")
	}

	// Half correct: 1 of 2 marks scales to 50 of 100, below the bar.
	attempt, err = env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err = env.exam.SubmitAndGrade(asUser(student), attempt.ID, map[uuid.UUID]string{
		questions[0].ID: "A",
		questions[1].ID: "B",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 50 || result.IsPassed {
		t.Fatalf("expected 50 and fail, got score=%v passed=%v", result.Score, result.IsPassed)
	}
}

func TestGradingCountsQuestionsEqually(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)

	exam, err := env.exam.CreateExam(asUser(teacher), CreateExamInput{
		CourseID:     course.ID,
		Title:        "Weighted quiz",
		TotalMarks:   100,
		PassingMarks: 60,
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	questions, err := env.exam.AddQuestions(asUser(teacher), exam.ID, []CreateQuestionInput{
		{Text: "Heavy question", Marks: 3, CorrectAnswer: "A", Options: []CreateAnswerInput{
			{Identifier: "A", Text: "right"},
			{Identifier: "B", Text: "wrong"},
		}},
		{Text: "Light question", Marks: 1, CorrectAnswer: "B", Options: []CreateAnswerInput{
			{Identifier: "A", Text: "wrong"},
			{Identifier: "B", Text: "right"},
		}},
	})
	if err != nil {
		t.Fatalf("add questions: %v", err)
	}
	if _, err := env.exam.PublishExam(asUser(teacher), exam.ID); err != nil {
		t.Fatalf("publish exam: %v", err)
	}
	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	attempt, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// Only the 3-mark question answered: 1 of 2 questions, so 50 of 100,
	// below the bar. Stored marks must not weight the score.
	result, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, map[uuid.UUID]string{
		questions[0].ID: "A",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 50 || result.IsPassed {
		t.Fatalf("expected 50/fail under equal weighting, got score=%v passed=%v", result.Score, result.IsPassed)
	}
}

func TestGradingIsCaseSensitive(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	exam, questions := env.seedExam(t, teacher, course, CreateExamInput{
		Title:        "Quiz",
		TotalMarks:   100,
		PassingMarks: 50,
	})

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	attempt, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, map[uuid.UUID]string{
		questions[0].ID: "a",
		questions[1].ID: "c",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("lowercase identifiers must not match, got score %v", result.Score)
	}
}

func TestZeroQuestionExamGradesToZero(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)

	exam, err := env.exam.CreateExam(asUser(teacher), CreateExamInput{
		CourseID:     course.ID,
		Title:        "Empty quiz",
		TotalMarks:   100,
		PassingMarks: 0,
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if _, err := env.exam.PublishExam(asUser(teacher), exam.ID); err != nil {
		t.Fatalf("publish exam: %v", err)
	}
	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	attempt, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Even with a zero passing bar there is nothing to earn, so it fails.
	if result.Score != 0 || result.IsPassed {
		t.Fatalf("expected 0/fail for empty exam, got score=%v passed=%v", result.Score, result.IsPassed)
	}
}

func TestSubmitTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	exam, questions := env.seedExam(t, teacher, course, CreateExamInput{
		Title:        "Quiz",
		TotalMarks:   100,
		PassingMarks: 50,
	})

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	attempt, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	answers := map[uuid.UUID]string{questions[0].ID: "A"}
	if _, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, answers); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, answers); !errors.Is(err, domain.ErrAlreadyGraded) {
		t.Fatalf("expected ErrAlreadyGraded, got %v", err)
	}
}
