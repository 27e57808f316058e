package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeDB                = "DB_ERROR"
	CodeInvalidAIOutput   = "INVALID_AI_OUTPUT"
	CodeAIProvider        = "AI_PROVIDER_ERROR"
	CodeAIKeyInvalid      = "AI_KEY_INVALID"
	CodeNoTopicsCompleted = "NO_TOPICS_COMPLETED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL_ERROR"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the caller may simply try the same request again.
func (e *Error) Retryable() bool {
	return e != nil && (e.Code == CodeInvalidAIOutput || e.Code == CodeAIProvider)
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, CodeValidation, errors.New(msg))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, errors.New(msg))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func DB(err error) *Error {
	return New(http.StatusInternalServerError, CodeDB, err)
}

func InvalidAIOutput(err error) *Error {
	return New(http.StatusUnprocessableEntity, CodeInvalidAIOutput, fmt.Errorf("invalid AI output: %w", err))
}

// From returns err as *Error, wrapping anything else as an internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
