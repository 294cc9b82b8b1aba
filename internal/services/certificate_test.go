package services

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func (e *testEnv) completeEnrollment(t *testing.T, teacher, student *types.User) *types.Enrollment {
	t.Helper()
	course := e.seedPublishedCourse(t, teacher)
	lesson := e.seedContent(t, teacher, course.ID, true)
	if _, err := e.enrollment.Enroll(asUser(student), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := e.progress.MarkContentCompleted(asUser(student), lesson.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	enr, err := e.enrollmentRepo.GetByStudentAndCourse(asUser(student), nil, student.ID, course.ID)
	if err != nil || enr == nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if enr.Status != types.EnrollmentCompleted {
		t.Fatalf("expected COMPLETED, got %s", enr.Status)
	}
	return enr
}

func TestCertificateNumberFormat(t *testing.T) {
	issued := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^CERT-20260829-[0-9A-F]{8}$`)
	for i := 0; i < 100; i++ {
		n := newCertificateNumber(issued)
		if !pattern.MatchString(n) {
			t.Fatalf("bad certificate number %q", n)
		}
	}
}

func TestVerificationCodeFormatAndUniqueness(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{20}$`)
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		code := newVerificationCode()
		if !pattern.MatchString(code) {
			t.Fatalf("bad verification code %q", code)
		}
		if seen[code] {
			t.Fatalf("duplicate verification code %q", code)
		}
		seen[code] = true
	}
}

func TestIssueRequiresCompletion(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	course := env.seedPublishedCourse(t, teacher)
	env.seedContent(t, teacher, course.ID, true)

	enr, err := env.enrollment.Enroll(asUser(student), course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.certificate.Issue(asUser(student), enr.ID); !errors.Is(err, domain.ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
}

func TestIssueIsIdempotentPerEnrollment(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	enr := env.completeEnrollment(t, teacher, student)

	first, err := env.certificate.Issue(asUser(student), enr.ID)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := env.certificate.Issue(asUser(student), enr.ID)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if first.ID != second.ID || first.CertificateNumber != second.CertificateNumber {
		t.Fatalf("expected the same certificate, got %s vs %s", first.CertificateNumber, second.CertificateNumber)
	}
}

func TestIssueRejectsStrangers(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	stranger := env.seedUser(t, types.RoleStudent)
	enr := env.completeEnrollment(t, teacher, student)

	if _, err := env.certificate.Issue(asUser(stranger), enr.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestVerifyByCode(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)
	student := env.seedUser(t, types.RoleStudent)
	enr := env.completeEnrollment(t, teacher, student)

	cert, err := env.certificate.Issue(asUser(student), enr.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	found, err := env.certificate.Verify(asUser(student), cert.VerificationCode)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if found.ID != cert.ID {
		t.Fatal("verify returned the wrong certificate")
	}

	if _, err := env.certificate.Verify(asUser(student), "0123456789ABCDEF0123"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got %v", err)
	}
}
