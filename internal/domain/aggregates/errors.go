package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies aggregate write failures. Callers branch on the
// code, never on error text.
type ErrorCode string

const (
	// CodeValidation marks input the caller can fix (bad rating, nil ID).
	CodeValidation ErrorCode = "validation"
	// CodeNotFound covers both a missing row and a row the caller does
	// not own; the two are indistinguishable on purpose.
	CodeNotFound ErrorCode = "not_found"
	// CodeConflict marks a lost optimistic-concurrency race.
	CodeConflict ErrorCode = "conflict"
	// CodeInvariantViolation marks stored state the domain rules reject.
	CodeInvariantViolation ErrorCode = "invariant_violation"
	// CodePreconditionFailed marks a referenced row that vanished mid-write.
	CodePreconditionFailed ErrorCode = "precondition_failed"
	// CodeRetryable marks transient storage failures worth retrying.
	CodeRetryable ErrorCode = "retryable"
	// CodeInternal is everything else.
	CodeInternal ErrorCode = "internal"
)

// Error carries the code plus the failing operation for logs. State is
// unchanged whenever an Error is returned.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with an explicit code and operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with aggregate semantics, preserving it for errors.Is.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode reports whether err (anywhere in its chain) carries code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the aggregate error code, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}
