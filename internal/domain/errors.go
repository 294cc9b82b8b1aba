package domain

import "errors"

// Operation failures are reported synchronously to the caller and are never
// retried internally. Services wrap these sentinels with fmt.Errorf("%w") so
// the HTTP layer can map them with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotEnrolled         = errors.New("not enrolled in course")
	ErrAlreadyEnrolled     = errors.New("already enrolled in course")
	ErrCourseNotEnrollable = errors.New("course is not open for enrollment")
	ErrMaxAttemptsExceeded = errors.New("maximum exam attempts reached")
	ErrExamNotAvailable    = errors.New("exam is not available")
	ErrAlreadyGraded       = errors.New("exam attempt already graded")
	ErrNotCompleted        = errors.New("enrollment is not completed")
	ErrStorageFailure      = errors.New("storage failure")
)
