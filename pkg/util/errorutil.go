package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Fields     []FieldError
	Err        error
}

// FieldError reports a validation failure for one input field.
type FieldError struct {
	Path    string
	Message string
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// NewValidationError reports one or more field-level input failures.
func NewValidationError(fields ...FieldError) error {
	message := "validation failed"
	if len(fields) > 0 {
		message = fields[0].Message
	}
	return &DomainError{
		Code:       "VALIDATION_FAILED",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

// NewDuplicateEmail signals a registration conflict on email.
func NewDuplicateEmail() error {
	return NewDomainError("DUPLICATE_EMAIL", "user with same email already exists", http.StatusBadRequest)
}

// NewInvalidCredentials deliberately does not distinguish an unknown email
// from a wrong password.
func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "email or password does not match", http.StatusBadRequest)
}

func NewNotFound(resource string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden)
}

func NewRateLimited(message string) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource").(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WireError is one entry in the response error list.
type WireError struct {
	Message  string `json:"message"`
	Type     string `json:"type"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// WireBody is the uniform error response body.
type WireBody struct {
	Errors []WireError `json:"errors"`
}

// ToWireBody renders a DomainError as the response body. Validation errors
// expand to one entry per failed field.
func ToWireBody(e *DomainError) WireBody {
	if len(e.Fields) > 0 {
		entries := make([]WireError, 0, len(e.Fields))
		for _, f := range e.Fields {
			entries = append(entries, WireError{
				Message:  f.Message,
				Type:     e.Code,
				Path:     f.Path,
				Location: "body",
			})
		}
		return WireBody{Errors: entries}
	}
	return WireBody{Errors: []WireError{{Message: e.Message, Type: e.Code}}}
}
