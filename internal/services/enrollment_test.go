package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)

	course, err := env.catalog.CreateCourse(asUser(teacher), CreateCourseInput{Title: "Draft course"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); !errors.Is(err, domain.ErrCourseNotEnrollable) {
		t.Fatalf("expected ErrCourseNotEnrollable, got %v", err)
	}
}

func TestEnrollTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if _, err := env.enrollment.Enroll(asUser(student), course.ID); !errors.Is(err, domain.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestEnrollHonorsCapacity(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)

	max := 1
	course, err := env.catalog.CreateCourse(asUser(teacher), CreateCourseInput{
		Title:       "Tiny course",
		MaxStudents: &max,
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, err := env.catalog.PublishCourse(asUser(teacher), course.ID); err != nil {
		t.Fatalf("publish course: %v", err)
	}

	first := env.seedUser(t, types.RoleStudent)
	second := env.seedUser(t, types.RoleStudent)

	if _, err := env.enrollment.Enroll(asUser(first), course.ID); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if _, err := env.enrollment.Enroll(asUser(second), course.ID); !errors.Is(err, domain.ErrCourseNotEnrollable) {
		t.Fatalf("expected ErrCourseNotEnrollable for full course, got %v", err)
	}
}

func TestTeachersCannotEnroll(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	course := env.seedPublishedCourse(t, teacher)

	if _, err := env.enrollment.Enroll(asUser(teacher), course.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestRatingUpdatesCourseAggregate(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	course := env.seedPublishedCourse(t, teacher)

	alice := env.seedUser(t, types.RoleStudent)
	bob := env.seedUser(t, types.RoleStudent)

	ea, err := env.enrollment.Enroll(asUser(alice), course.ID)
	if err != nil {
		t.Fatalf("enroll alice: %v", err)
	}
	eb, err := env.enrollment.Enroll(asUser(bob), course.ID)
	if err != nil {
		t.Fatalf("enroll bob: %v", err)
	}

	// Rating while still ACTIVE is allowed.
	if _, err := env.enrollment.RecordRating(asUser(alice), ea.ID, RateEnrollmentInput{Rating: 5}); err != nil {
		t.Fatalf("rate alice: %v", err)
	}
	if _, err := env.enrollment.RecordRating(asUser(bob), eb.ID, RateEnrollmentInput{Rating: 4, Review: "solid"}); err != nil {
		t.Fatalf("rate bob: %v", err)
	}

	updated, err := env.catalog.GetCourseByID(asUser(teacher), course.ID)
	if err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if updated.Rating != 4.5 {
		t.Fatalf("expected course rating 4.5, got %v", updated.Rating)
	}
	if updated.TotalRatings != 2 {
		t.Fatalf("expected 2 total ratings, got %d", updated.TotalRatings)
	}
}

func TestRatingBoundsAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	course := env.seedPublishedCourse(t, teacher)
	student := env.seedUser(t, types.RoleStudent)
	other := env.seedUser(t, types.RoleStudent)

	enr, err := env.enrollment.Enroll(asUser(student), course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := env.enrollment.RecordRating(asUser(student), enr.ID, RateEnrollmentInput{Rating: 6}); err == nil {
		t.Fatal("expected out-of-range rating to fail")
	}
	if _, err := env.enrollment.RecordRating(asUser(other), enr.ID, RateEnrollmentInput{Rating: 3}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for non-owner, got %v", err)
	}
}

func TestCompletionRollUp(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)

	first := env.seedContent(t, teacher, course.ID, true)
	second := env.seedContent(t, teacher, course.ID, true)
	env.seedContent(t, teacher, course.ID, false) // optional, never counts

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := env.progress.MarkContentCompleted(asUser(student), first.ID); err != nil {
		t.Fatalf("complete first: %v", err)
	}
	enr, err := env.enrollmentRepo.GetByStudentAndCourse(asUser(student), nil, student.ID, course.ID)
	if err != nil || enr == nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enr.ProgressPercentage != 50 {
		t.Fatalf("expected 50%% after one of two mandatory, got %v", enr.ProgressPercentage)
	}
	if enr.Status != types.EnrollmentActive {
		t.Fatalf("expected ACTIVE at 50%%, got %s", enr.Status)
	}

	if _, err := env.progress.MarkContentCompleted(asUser(student), second.ID); err != nil {
		t.Fatalf("complete second: %v", err)
	}
	enr, err = env.enrollmentRepo.GetByStudentAndCourse(asUser(student), nil, student.ID, course.ID)
	if err != nil || enr == nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enr.ProgressPercentage != 100 {
		t.Fatalf("expected 100%%, got %v", enr.ProgressPercentage)
	}
	if enr.Status != types.EnrollmentCompleted {
		t.Fatalf("expected COMPLETED with no required exams, got %s", enr.Status)
	}
	if enr.CompletedAt == nil {
		t.Fatal("expected CompletedAt to be set")
	}
}

func TestCompletionWaitsForRequiredExam(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, course.ID, true)

	exam, err := env.exam.CreateExam(asUser(teacher), CreateExamInput{
		CourseID:     course.ID,
		Title:        "Final",
		ExamType:     types.ExamFinal,
		TotalMarks:   100,
		PassingMarks: 50,
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	questions, err := env.exam.AddQuestions(asUser(teacher), exam.ID, []CreateQuestionInput{
		{Text: "2+2?", CorrectAnswer: "B", Options: []CreateAnswerInput{
			{Identifier: "A", Text: "3"},
			{Identifier: "B", Text: "4"},
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
	if _, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}

	enr, err := env.enrollmentRepo.GetByStudentAndCourse(asUser(student), nil, student.ID, course.ID)
	if err != nil || enr == nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enr.ProgressPercentage != 100 {
		t.Fatalf("expected 100%% content progress, got %v", enr.ProgressPercentage)
	}
	if enr.Status != types.EnrollmentActive {
		t.Fatalf("expected ACTIVE until required exam is passed, got %s", enr.Status)
	}

	attempt, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	result, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, map[uuid.UUID]string{
		questions[0].ID: "B",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.IsPassed {
		t.Fatalf("expected passing result, got score %v", result.Score)
	}

	enr, err = env.enrollmentRepo.GetByStudentAndCourse(asUser(student), nil, student.ID, course.ID)
	if err != nil || enr == nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enr.Status != types.EnrollmentCompleted {
		t.Fatalf("expected COMPLETED after passing required exam, got %s", enr.Status)
	}
}

func TestRecomputeProgressIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, course.ID, true)
	env.seedContent(t, teacher, course.ID, true)

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	first, err := env.enrollment.RecomputeProgress(asUser(student), nil, student.ID, course.ID)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := env.enrollment.RecomputeProgress(asUser(student), nil, student.ID, course.ID)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if first.ProgressPercentage != 50 {
		t.Fatalf("expected 50%%, got %v", first.ProgressPercentage)
	}
	if second.ProgressPercentage != first.ProgressPercentage || second.Status != first.Status {
		t.Fatalf("recompute changed state with no intervening writes: %v/%s vs %v/%s",
			first.ProgressPercentage, first.Status, second.ProgressPercentage, second.Status)
	}
}

func TestCompletedEnrollmentNeverReverts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, course.ID, true)

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Adding more mandatory content after completion must not regress the
	// frozen 100%.
	env.seedContent(t, teacher, course.ID, true)
	enr, err := env.enrollment.RecomputeProgress(asUser(student), nil, student.ID, course.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if enr.Status != types.EnrollmentCompleted || enr.ProgressPercentage != 100 {
		t.Fatalf("expected frozen COMPLETED/100, got %s/%v", enr.Status, enr.ProgressPercentage)
	}
}
