package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestStudentDashboardAggregates(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)

	// One completed enrollment with a certificate and a passed exam.
	done := env.seedPublishedCourse(t, teacher)
	lesson := env.seedContent(t, teacher, done.ID, true)
	exam, questions := env.seedExam(t, teacher, done, CreateExamInput{
		Title:        "Final",
		TotalMarks:   100,
		PassingMarks: 50,
	})
	enr, err := env.enrollment.Enroll(asUser(student), done.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	attempt, err := env.exam.StartAttempt(asUser(student), exam.ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if _, err := env.exam.SubmitAndGrade(asUser(student), attempt.ID, map[uuid.UUID]string{
		questions[0].ID: "A",
		questions[1].ID: "C",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.progress.MarkContentCompleted(asUser(student), lesson.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	if _, err := env.certificate.Issue(asUser(student), enr.ID); err != nil {
		t.Fatalf("issue certificate: %v", err)
	}

	// One active enrollment with nothing done yet.
	active := env.seedPublishedCourse(t, teacher)
	env.seedContent(t, teacher, active.ID, true)
	if _, err := env.enrollment.Enroll(asUser(student), active.ID); err != nil {
		t.Fatalf("enroll active: %v", err)
	}

	dash, err := env.dashboard.StudentDashboard(asUser(student))
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.ActiveEnrollments != 1 || dash.CompletedEnrollments != 1 {
		t.Fatalf("unexpected enrollment counts %+v", dash)
	}
	if dash.Certificates != 1 {
		t.Fatalf("expected 1 certificate, got %d", dash.Certificates)
	}
	if dash.ExamAttempts != 1 || dash.ExamsPassed != 1 {
		t.Fatalf("unexpected exam counts %+v", dash)
	}
	// 100 on the completed course, 0 on the fresh one.
	if dash.AverageProgress != 50 {
		t.Fatalf("expected 50 average progress, got %v", dash.AverageProgress)
	}
}
