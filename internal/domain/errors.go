package domain

import (
	"errors"
	"net/http"
)

// ErrorCode classifies an AppError. Handlers map it to an HTTP status and
// decide from it whether the message may be shown to the viewer.
type ErrorCode int

const (
	CodeNotFound ErrorCode = iota + 1
	CodeAlreadyExists
	CodeValidation
	CodeInternal
	CodeUnauthorized
	CodeForbidden
	// CodeUpstream marks a failing or unreachable marketplace backend.
	CodeUpstream
)

var codeInfo = map[ErrorCode]struct {
	name   string
	status int
}{
	CodeNotFound:      {"not_found", http.StatusNotFound},
	CodeAlreadyExists: {"already_exists", http.StatusConflict},
	CodeValidation:    {"validation", http.StatusBadRequest},
	CodeInternal:      {"internal", http.StatusInternalServerError},
	CodeUnauthorized:  {"unauthorized", http.StatusUnauthorized},
	CodeForbidden:     {"forbidden", http.StatusForbidden},
	CodeUpstream:      {"upstream", http.StatusBadGateway},
}

func (c ErrorCode) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return "unknown"
}

// HTTPStatus returns the response status for c; unknown codes are 500.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := codeInfo[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// AppError is an error the storefront knows how to present: Message is the
// text for the viewer and Err the underlying cause, kept for logs.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code, so
// errors.Is(err, ErrNotFound) holds for any not-found error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is, one per code.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden     = &AppError{Code: CodeForbidden, Message: "forbidden"}
	ErrUpstream      = &AppError{Code: CodeUpstream, Message: "backend unavailable"}
)

// NewAppError returns an AppError carrying message and the optional cause err.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain and
// CodeInternal for anything else.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func IsNotFound(err error) bool      { return hasCode(err, CodeNotFound) }
func IsAlreadyExists(err error) bool { return hasCode(err, CodeAlreadyExists) }
func IsValidation(err error) bool    { return hasCode(err, CodeValidation) }
func IsInternal(err error) bool      { return hasCode(err, CodeInternal) }
func IsUnauthorized(err error) bool  { return hasCode(err, CodeUnauthorized) }
func IsForbidden(err error) bool     { return hasCode(err, CodeForbidden) }
func IsUpstream(err error) bool      { return hasCode(err, CodeUpstream) }

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatusCode maps err to a response status. Errors that are not an
// AppError are 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}
