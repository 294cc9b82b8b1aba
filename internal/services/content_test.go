package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestContentPositionsAssignSequentially(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	course := env.seedPublishedCourse(t, teacher)

	a := env.seedContent(t, teacher, course.ID, true)
	b := env.seedContent(t, teacher, course.ID, true)
	c := env.seedContent(t, teacher, course.ID, false)

	if a.Order != 1 || b.Order != 2 || c.Order != 3 {
		t.Fatalf("unexpected positions %d %d %d", a.Order, b.Order, c.Order)
	}
}

func TestReorderContent(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	course := env.seedPublishedCourse(t, teacher)

	a := env.seedContent(t, teacher, course.ID, true)
	b := env.seedContent(t, teacher, course.ID, true)
	c := env.seedContent(t, teacher, course.ID, true)

	if err := env.content.ReorderContent(asUser(teacher), course.ID, []uuid.UUID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	listed, err := env.content.ListCourseContent(asUser(teacher), course.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []uuid.UUID{listed[0].ID, listed[1].ID, listed[2].ID}
	want := []uuid.UUID{c.ID, a.ID, b.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}

	// Partial reorders are rejected outright.
	if err := env.content.ReorderContent(asUser(teacher), course.ID, []uuid.UUID{a.ID}); err == nil {
		t.Fatal("expected partial reorder to fail")
	}
}

func TestContentManagementRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, types.RoleTeacher)
	rival := env.seedUser(t, types.RoleTeacher)
	course := env.seedPublishedCourse(t, owner)
	lesson := env.seedContent(t, owner, course.ID, true)

	if _, err := env.content.CreateContent(asUser(rival), CreateContentInput{
		CourseID: course.ID,
		Title:    "Intruder lesson",
	}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on create, got %v", err)
	}
	if err := env.content.DeleteContent(asUser(rival), lesson.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on delete, got %v", err)
	}
}

func TestDeletedContentLeavesMandatoryCount(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	keep := env.seedContent(t, teacher, course.ID, true)
	drop := env.seedContent(t, teacher, course.ID, true)

	// A required exam keeps the enrollment ACTIVE through the recomputes.
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
	if _, err := env.progress.MarkContentCompleted(asUser(student), keep.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := env.content.DeleteContent(asUser(teacher), drop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	enr, err := env.enrollment.RecomputeProgress(asUser(student), nil, student.ID, course.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if enr.ProgressPercentage != 100 {
		t.Fatalf("deleted content must drop out of the denominator, got %v", enr.ProgressPercentage)
	}
}
