package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/audioctl/internal/ir"
)

// Error is a classified failure surfaced to the command layer.
//
// Codes:
//   - NOT_SUPPORTED: no rule applies to the endpoint
//   - NO_CANDIDATE: learning found no usable write item
//   - WRITE_FAILURE: a required registry write failed
//   - VERIFICATION_TIMEOUT: the write went through but read-back never confirmed it
//   - CATALOG_IO: reading or writing the catalog file failed
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the file involved, for catalog errors.
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	ErrCodeNotSupported        ErrorCode = "NOT_SUPPORTED"
	ErrCodeNoCandidate         ErrorCode = "NO_CANDIDATE"
	ErrCodeWriteFailure        ErrorCode = "WRITE_FAILURE"
	ErrCodeVerificationTimeout ErrorCode = "VERIFICATION_TIMEOUT"
	ErrCodeCatalogIO           ErrorCode = "CATALOG_IO"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsNotSupported reports whether err is a NOT_SUPPORTED error.
func IsNotSupported(err error) bool { return hasCode(err, ErrCodeNotSupported) }

// IsNoCandidate reports whether err is a NO_CANDIDATE error.
func IsNoCandidate(err error) bool { return hasCode(err, ErrCodeNoCandidate) }

// IsWriteFailure reports whether err is a WRITE_FAILURE error.
func IsWriteFailure(err error) bool { return hasCode(err, ErrCodeWriteFailure) }

// IsVerificationTimeout reports whether err is a VERIFICATION_TIMEOUT error.
func IsVerificationTimeout(err error) bool { return hasCode(err, ErrCodeVerificationTimeout) }

// IsCatalogIO reports whether err is a CATALOG_IO error.
func IsCatalogIO(err error) bool { return hasCode(err, ErrCodeCatalogIO) }

// NewNotSupportedError reports that no rule covers the endpoint.
func NewNotSupportedError(what string) *Error {
	return &Error{
		Code:    ErrCodeNotSupported,
		Message: fmt.Sprintf("no learned rule applies to %s", what),
	}
}

// NewNoCandidateError reports a learning run without a usable toggle.
func NewNoCandidateError(message string, err error) *Error {
	return &Error{
		Code:    ErrCodeNoCandidate,
		Message: message,
		Err:     err,
	}
}

// NewWriteFailureError reports failed registry writes.
func NewWriteFailureError(message string, err error) *Error {
	return &Error{
		Code:    ErrCodeWriteFailure,
		Message: message,
		Err:     err,
	}
}

// NewVerificationTimeoutError reports a write that could not be confirmed.
func NewVerificationTimeoutError(expected, last ir.State, timeout time.Duration) *Error {
	return &Error{
		Code:    ErrCodeVerificationTimeout,
		Message: fmt.Sprintf("state did not read back as %s within %s (last read %s)", expected, timeout, last),
	}
}

// NewCatalogIOError wraps a catalog read or write failure.
func NewCatalogIOError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeCatalogIO,
		Message: "catalog access failed",
		Path:    path,
		Err:     err,
	}
}
