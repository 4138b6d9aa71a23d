package services

import (
	"errors"
)

var (
	// ErrNotFound is returned when a referenced case or proceeding does not exist
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials is the single error for every failed login
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStorage wraps database and file-system failures during a save or commit
	ErrStorage = errors.New("storage failure")
	// ErrRequestTooLarge is returned when the uploads of one request exceed the cap
	ErrRequestTooLarge = errors.New("uploaded content exceeds the maximum allowed size")
	// ErrFileNotFound is returned when a stored file name is unknown
	ErrFileNotFound = errors.New("file not found")
	// ErrSessionExpired is returned for a session token past its expiry
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidFilename is returned when a filename sanitizes to nothing usable
	ErrInvalidFilename = errors.New("invalid filename")
)

// ValidationError reports bad input. Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is or wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
