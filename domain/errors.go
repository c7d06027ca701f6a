package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure independently of the transport that reports it.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error is a classified failure. Message identifies the failure kind; Err
// carries request specific detail.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compares code and message, so a sentinel still matches after Wrapf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError classifies err under code.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Wrapf annotates a sentinel with request details; the result still matches
// base via errors.Is.
func Wrapf(base *Error, format string, args ...any) error {
	return WrapError(base.Code, base.Message, fmt.Errorf(format, args...))
}

// CodeOf returns the classification of the outermost domain error in err's
// chain, or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code != "" {
		return dErr.Code
	}
	return ErrCodeInternal
}

// IsDomainError reports whether err is classified as code.
func IsDomainError(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Lookup and state errors.
var (
	ErrUserNotFound         = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrSubtaskNotFound      = NewError(ErrCodeNotFound, "subtask not found")
	ErrProjectNotFound      = NewError(ErrCodeNotFound, "project not found")
	ErrNotificationNotFound = NewError(ErrCodeNotFound, "notification not found")
	ErrSessionNotFound      = NewError(ErrCodeNotFound, "session not found")
	ErrNoCurrentUser        = NewError(ErrCodeNotFound, "no user logged in")
	ErrUserExists           = NewError(ErrCodeConflict, "user already exists")
	ErrDuplicateID          = NewError(ErrCodeConflict, "duplicate id")
)

// Credential errors.
var (
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid credentials")
)

// Input validation errors.
var (
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidPriority  = NewError(ErrCodeInvalid, "invalid priority")
	ErrInvalidSortField = NewError(ErrCodeInvalid, "invalid sort field")
	ErrInvalidPeriod    = NewError(ErrCodeInvalid, "invalid period")
)
