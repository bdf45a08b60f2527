package models

import "errors"

// Error kinds. Every domain error wraps exactly one of these so the HTTP layer
// can map it with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain error with a user-facing message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError creates a domain error of the given kind
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a validation error with the given message
func Validation(message string) error {
	return NewError(ErrValidation, message)
}

var (
	ErrUserNotFound        = NewError(ErrNotFound, "User not found")
	ErrCourseNotFound      = NewError(ErrNotFound, "Course not found")
	ErrModuleNotFound      = NewError(ErrNotFound, "Module not found")
	ErrLessonNotFound      = NewError(ErrNotFound, "Lesson not found")
	ErrQuizNotFound        = NewError(ErrNotFound, "Quiz not found")
	ErrCertificateNotFound = NewError(ErrNotFound, "Certificate not found")
	ErrProgressNotFound    = NewError(ErrNotFound, "Progress not found")

	ErrInvalidCredentials   = NewError(ErrUnauthorized, "Invalid credentials")
	ErrRegistrationDisabled = NewError(ErrForbidden, "Registration is disabled")
	ErrAccessDenied         = NewError(ErrForbidden, "Access denied")

	ErrEmailTaken      = NewError(ErrConflict, "Email already registered")
	ErrAlreadyEnrolled = NewError(ErrConflict, "Already enrolled")
)
