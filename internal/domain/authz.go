package domain

import (
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/types"
)

// Authorization is a set of pure predicates over the injected principal.
// Handlers and services call these; there is no role dispatch anywhere else.

func IsStudent(r types.Role) bool { return r == types.RoleStudent }
func IsTeacher(r types.Role) bool { return r == types.RoleTeacher }
func IsAdmin(r types.Role) bool   { return r == types.RoleAdmin }

// CanAuthorCourses reports whether the role may create courses at all.
func CanAuthorCourses(r types.Role) bool {
	return r == types.RoleTeacher || r == types.RoleAdmin
}

// CanManageCourse reports whether the principal may mutate the given course
// and its contents and exams.
func CanManageCourse(r types.Role, userID uuid.UUID, c *types.Course) bool {
	if c == nil {
		return false
	}
	if r == types.RoleAdmin {
		return true
	}
	return r == types.RoleTeacher && c.TeacherID == userID
}

// CanManageCategories is admin-only.
func CanManageCategories(r types.Role) bool { return r == types.RoleAdmin }

// CanRateEnrollment: only the enrollment owner may rate, while the
// enrollment is ACTIVE or COMPLETED. Rating before completion is an
// explicit policy, not an oversight.
func CanRateEnrollment(userID uuid.UUID, e *types.Enrollment) bool {
	if e == nil || e.StudentID != userID {
		return false
	}
	return e.Status == types.EnrollmentActive || e.Status == types.EnrollmentCompleted
}
