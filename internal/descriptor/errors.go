package descriptor

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes descriptor errors.
type ErrorCode string

const (
	// ErrCodeMissingIdentity indicates the type declares no identity field.
	ErrCodeMissingIdentity ErrorCode = "MISSING_IDENTITY"

	// ErrCodeInvalidIdentity indicates the identity value is not UUID-shaped.
	ErrCodeInvalidIdentity ErrorCode = "INVALID_IDENTITY"

	// ErrCodeSubTypeNotFound indicates the sub-type could not be resolved
	// from the divisor fields.
	ErrCodeSubTypeNotFound ErrorCode = "SUBTYPE_NOT_FOUND"

	// ErrCodeUnknownType indicates no descriptor is registered for a type.
	ErrCodeUnknownType ErrorCode = "UNKNOWN_TYPE"

	// ErrCodeUnknownField indicates the descriptor declares no such field.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"

	// ErrCodeInaccessible indicates a field cannot be read or written.
	ErrCodeInaccessible ErrorCode = "INACCESSIBLE"

	// ErrCodeInvalidDescriptor indicates a descriptor failed validation.
	ErrCodeInvalidDescriptor ErrorCode = "INVALID_DESCRIPTOR"
)

// Error is a domain-data integrity error raised by the registry.
type Error struct {
	Code    ErrorCode
	Message string
	Type    string
	Field   string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Type != "" && e.Field != "" {
		msg = fmt.Sprintf("%s (type=%s, field=%s)", msg, e.Type, e.Field)
	} else if e.Type != "" {
		msg = fmt.Sprintf("%s (type=%s)", msg, e.Type)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func hasCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsMissingIdentity reports whether err is a MISSING_IDENTITY error.
func IsMissingIdentity(err error) bool { return hasCode(err, ErrCodeMissingIdentity) }

// IsInvalidIdentity reports whether err is an INVALID_IDENTITY error.
func IsInvalidIdentity(err error) bool { return hasCode(err, ErrCodeInvalidIdentity) }

// IsSubTypeNotFound reports whether err is a SUBTYPE_NOT_FOUND error.
func IsSubTypeNotFound(err error) bool { return hasCode(err, ErrCodeSubTypeNotFound) }

// IsUnknownType reports whether err is an UNKNOWN_TYPE error.
func IsUnknownType(err error) bool { return hasCode(err, ErrCodeUnknownType) }

func newMissingIdentity(typeName string) *Error {
	return &Error{
		Code:    ErrCodeMissingIdentity,
		Message: "no identity field declared",
		Type:    typeName,
	}
}

func newInvalidIdentity(typeName, field string, value any, err error) *Error {
	return &Error{
		Code:    ErrCodeInvalidIdentity,
		Message: fmt.Sprintf("identity value %v is not a UUID", value),
		Type:    typeName,
		Field:   field,
		Err:     err,
	}
}

func newSubTypeNotFound(typeName, field, reason string) *Error {
	return &Error{
		Code:    ErrCodeSubTypeNotFound,
		Message: reason,
		Type:    typeName,
		Field:   field,
	}
}

func newUnknownType(typeName string) *Error {
	return &Error{
		Code:    ErrCodeUnknownType,
		Message: "no descriptor registered",
		Type:    typeName,
	}
}
