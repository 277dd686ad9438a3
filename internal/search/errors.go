package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validation codes. These are stable and surface in CLI, HTTP, and MCP errors.
const (
	CodeScopeMismatch = "SCOPE_MISMATCH"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInvalidDate   = "INVALID_DATE_RANGE"
	CodeInvalidPage   = "INVALID_PAGE"
)

// Failure codes reported for errors that are not the caller's fault.
const (
	CodeStore    = "DATABASE_ERROR"
	CodeInternal = "INTERNAL_ERROR"
)

// Warning codes for advisories that do not block a search.
const (
	WarnPrefixMismatch = "PREFIX_MISMATCH"
)

// ValidationError rejects a request the caller must fix. It is never retried.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrStore matches every StoreError via errors.Is.
var ErrStore = errors.New("hierarchy store failure")

// StoreError reports a failed or timed-out hierarchy store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStore) match any StoreError.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// Warning is a caller-facing advisory attached to an otherwise valid search.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseID parses a record id supplied by a caller.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid(CodeInvalidInput, "invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
