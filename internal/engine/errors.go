package engine

import (
	"errors"
	"fmt"
)

// ScanError is returned by Engine.Scan and Engine.FindInstructions.
type ScanError struct {
	// Code identifies the error category.
	Code ScanErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run, if one was started.
	RunID string

	// Err is the underlying cause.
	Err error
}

// ScanErrorCode categorizes scan errors.
type ScanErrorCode string

const (
	// ErrCodeCancelled indicates the context was cancelled mid-scan.
	ErrCodeCancelled ScanErrorCode = "CANCELLED"

	// ErrCodeInvalidPattern indicates a pattern is empty or does not compile.
	ErrCodeInvalidPattern ScanErrorCode = "INVALID_PATTERN"

	// ErrCodePersistFailed indicates the store rejected the run.
	ErrCodePersistFailed ScanErrorCode = "PERSIST_FAILED"

	// ErrCodeQuotaExceeded indicates the run passed its match quota.
	ErrCodeQuotaExceeded ScanErrorCode = "QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, msg, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *ScanError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ScanErrorCode) bool {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsCancelled returns true if the scan stopped because its context ended.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled)
}

// IsInvalidPattern returns true if a pattern was rejected.
func IsInvalidPattern(err error) bool {
	return hasCode(err, ErrCodeInvalidPattern)
}

// IsQuotaError returns true if the scan passed its match quota.
func IsQuotaError(err error) bool {
	return hasCode(err, ErrCodeQuotaExceeded)
}
