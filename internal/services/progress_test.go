package services

import (
	"errors"
	"testing"
	"time"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestProgressRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, course.ID, true)

	if _, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID); !errors.Is(err, domain.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
	if _, err := env.progress.RecordContentAccess(asUser(student), lesson.ID, 5); !errors.Is(err, domain.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, course.ID, true)
	env.seedContent(t, teacher, course.ID, true)

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	first, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if !first.IsCompleted || first.CompletedAt == nil {
		t.Fatal("expected completed with timestamp")
	}
	stamp := *first.CompletedAt

	time.Sleep(10 * time.Millisecond)
	second, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID)
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if !second.CompletedAt.Equal(stamp) {
		t.Fatalf("expected first completion timestamp to survive, got %v vs %v", second.CompletedAt, stamp)
	}

	enr, err := env.enrollmentRepo.GetByStudentAndCourse(asUser(student), nil, student.ID, course.ID)
	if err != nil || enr == nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enr.ProgressPercentage != 50 {
		t.Fatalf("double completion must not double-count: got %v", enr.ProgressPercentage)
	}
}

func TestNoMandatoryContentMeansFullProgress(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	optional := env.seedContent(t, teacher, course.ID, false)

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.progress.MarkContentCompleted(asUser(student), optional.ID); err != nil {
		t.Fatalf("complete optional: %v", err)
	}

	enr, err := env.enrollmentRepo.GetByStudentAndCourse(asUser(student), nil, student.ID, course.ID)
	if err != nil || enr == nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enr.ProgressPercentage != 100 {
		t.Fatalf("expected vacuous 100%% with no mandatory content, got %v", enr.ProgressPercentage)
	}
	if enr.Status != types.EnrollmentCompleted {
		t.Fatalf("expected COMPLETED, got %s", enr.Status)
	}
}

func TestNewMandatoryContentLowersPercentage(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, course.ID, true)

	// A required exam keeps the enrollment ACTIVE so the percentage stays
	// live against the current mandatory set.
	if _, err := env.exam.CreateExam(asUser(teacher), CreateExamInput{
		CourseID:     course.ID,
		Title:        "Gate",
		TotalMarks:   10,
		PassingMarks: 5,
	}); err != nil {
		t.Fatalf("create exam: %v", err)
	}

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	env.seedContent(t, teacher, course.ID, true)
	enr, err := env.enrollment.RecomputeProgress(asUser(student), nil, student.ID, course.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if enr.ProgressPercentage != 50 {
		t.Fatalf("expected 50%% against grown mandatory set, got %v", enr.ProgressPercentage)
	}
}

func TestRecordAccessAccumulatesTime(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, course.ID, true)

	if _, err := env.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := env.progress.RecordContentAccess(asUser(student), lesson.ID, 10); err != nil {
		t.Fatalf("first access: %v", err)
	}
	cp, err := env.progress.RecordContentAccess(asUser(student), lesson.ID, 7)
	if err != nil {
		t.Fatalf("second access: %v", err)
	}
	if cp.TimeSpentMinutes != 17 {
		t.Fatalf("expected 17 minutes accumulated, got %d", cp.TimeSpentMinutes)
	}

	summary, err := env.progress.GetCourseProgress(asUser(student), course.ID)
	if err != nil {
		t.Fatalf("course progress: %v", err)
	}
	if summary.Progress == nil || summary.Progress.TotalTimeSpentMinutes != 17 {
		t.Fatalf("expected course total 17 minutes, got %+v", summary.Progress)
	}
	if summary.Progress.LastContentID == nil || *summary.Progress.LastContentID != lesson.ID {
		t.Fatal("expected last content reference to track latest access")
	}
}
