package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so handlers can map them to a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindCapacity
	KindConfiguration
	KindPaymentNotCompleted
	KindInvalidSession
	KindInvalidRequest
	KindNotFound
	KindConflict
	KindUnauthorized
)

var kindNames = map[ErrorKind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindCapacity:            "capacity_exceeded",
	KindConfiguration:       "configuration",
	KindPaymentNotCompleted: "payment_not_completed",
	KindInvalidSession:      "invalid_session",
	KindInvalidRequest:      "invalid_request",
	KindNotFound:            "not_found",
	KindConflict:            "conflict",
	KindUnauthorized:        "unauthorized",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Status maps the kind to an HTTP status code.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation, KindCapacity, KindPaymentNotCompleted, KindInvalidSession, KindInvalidRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AppError is an error with a user-facing message and a kind.
// The cause in Err is only shown to clients when PublicCause is set.
type AppError struct {
	Kind        ErrorKind
	Message     string
	Err         error
	PublicCause bool
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError of the same kind, so callers can write
// errors.Is(err, &AppError{Kind: KindNotFound}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// WrapPublicAppError wraps a cause whose message is safe to return to the
// client, such as a payment provider's error.
func WrapPublicAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err, PublicCause: true}
}

func ValidationError(message string) *AppError {
	return NewAppError(KindValidation, message)
}

func NotFoundError(message string) *AppError {
	return NewAppError(KindNotFound, message)
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
