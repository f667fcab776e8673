package vset

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes set errors.
type ErrorCode string

const (
	ErrCodeInvalidBinding ErrorCode = "INVALID_BINDING"
	ErrCodePrecondition   ErrorCode = "PRECONDITION"
	ErrCodeDecode         ErrorCode = "DECODE"
)

// Error is a set-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Set     string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Set != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Code, e.Set, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidBinding reports whether err is a rejected binding edge.
func IsInvalidBinding(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeInvalidBinding
}

// IsPrecondition reports whether err is a violated precondition.
func IsPrecondition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodePrecondition
}

// Precondition returns a precondition error for a missing or invalid
// argument.
func Precondition(format string, args ...any) error {
	return &Error{Code: ErrCodePrecondition, Message: fmt.Sprintf(format, args...)}
}
