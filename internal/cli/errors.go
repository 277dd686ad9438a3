package cli

import (
	"errors"

	"github.com/packtrace/packtrace/internal/search"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"

	// Database errors
	ErrDatabaseNotFound = "DATABASE_NOT_FOUND"
	ErrDatabaseError    = search.CodeStore
	ErrDatabaseLocked   = "DATABASE_LOCKED"

	// Validation errors
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrScopeMismatch    = search.CodeScopeMismatch
	ErrInvalidDateRange = search.CodeInvalidDate
	ErrInvalidPage      = search.CodeInvalidPage

	// Input errors
	ErrInvalidInput    = search.CodeInvalidInput
	ErrMissingArgument = "MISSING_ARGUMENT"

	// File errors
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// General errors
	ErrInternal = search.CodeInternal
)

// codedError carries a stable code and an optional suggestion to the output
// layer.
type codedError struct {
	code       string
	suggestion string
	err        error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error, suggestion string) error {
	return &codedError{code: code, suggestion: suggestion, err: err}
}

// errorCode maps an error to its stable code.
func errorCode(err error) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	if ve, ok := search.IsValidation(err); ok {
		if ve.Code == "" {
			return ErrValidationFailed
		}
		return ve.Code
	}
	if errors.Is(err, search.ErrStore) {
		return ErrDatabaseError
	}
	return ErrInternal
}

func suggestionFor(err error, code string) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.suggestion
	}
	switch code {
	case ErrScopeMismatch:
		return "Pass --scope to match both ends at one level"
	case ErrDatabaseError:
		return "Check that the database is reachable; rerun with --verbose for details"
	case ErrInvalidDateRange:
		return "Dates are YYYY-MM-DD or RFC 3339, and --from must not be after --to"
	}
	return ""
}

// fail reports err in the current output mode.
func fail(err error) error {
	code := errorCode(err)
	return handleError(code, err, suggestionFor(err, code))
}
