package errors

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindConfig          Kind = "config"
	KindBootstrap       Kind = "bootstrap"
	KindTransport       Kind = "transport"
	KindStorage         Kind = "storage"
	KindCache           Kind = "cache"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindUnknown         Kind = "unknown"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return fmt.Sprintf("[%s:%s] %s (%s)", e.Kind, e.Op, e.Message, strings.Join(parts, "; "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// NewValidation builds a validation error carrying every offending field,
// not just the first one encountered.
func NewValidation(op string, fields []FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: "invalid request parameters",
		Fields:  fields,
	}
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			return target.Kind == kind
		}
		err = errors.Unwrap(err)
	}
	return false
}

// FieldsOf returns the field list of a validation error, or nil.
func FieldsOf(err error) []FieldError {
	var target *Error
	if errors.As(err, &target) {
		return target.Fields
	}
	return nil
}
