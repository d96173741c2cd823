// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIError represents a standard structure for API errors.
// Sentinels below are never mutated; WithMessage and WithDetails return copies.
type APIError struct {
	StatusCode int         `json:"statusCode"`
	Code       string      `json:"-"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError: StatusCode=%d, Code=%s, Message=%s", e.StatusCode, e.Code, e.Message)
}

// Is reports whether target is an APIError of the same kind, so errors.Is(err, ErrNotFound)
// matches any copy derived from the sentinel.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithMessage returns a copy of e carrying a caller specific message.
func (e *APIError) WithMessage(message string) *APIError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithDetails returns a copy of e carrying extra details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrBadRequest     = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "Bad Request")
	ErrUnauthorized   = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	ErrInvalidToken   = NewAPIError(http.StatusForbidden, "INVALID_TOKEN", "Forbidden")
	ErrNotFound       = NewAPIError(http.StatusNotFound, "NOT_FOUND", "Not Found")
	ErrConflict       = NewAPIError(http.StatusConflict, "CONFLICT", "Conflict")
	ErrInternalServer = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")

	// ErrForbidden is an ownership failure. Clients of this API treat it as 401.
	ErrForbidden = NewAPIError(http.StatusUnauthorized, "FORBIDDEN", "Forbidden")
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewValidationAPIError(details interface{}) *APIError {
	return &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "VALIDATION_ERROR",
		Message:    "Input validation failed.",
		Details:    details,
	}
}

// FormatValidationErrors converts validator.ValidationErrors into a map keyed by field.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMap := make(map[string]string)
	for _, e := range errs {
		field := e.Field()
		name := strings.ToLower(field)
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required.", name)
		case "email":
			message = fmt.Sprintf("The %s field must be a valid email address.", name)
		case "min":
			message = fmt.Sprintf("The %s field must be at least %s.", name, e.Param())
		case "max":
			message = fmt.Sprintf("The %s field may not be greater than %s.", name, e.Param())
		case "gt", "gte":
			message = fmt.Sprintf("The %s field must be greater than %s%s.", name, orEqual(e.Tag()), e.Param())
		case "oneof":
			message = fmt.Sprintf("The %s field must be one of the following values: %s.", name, e.Param())
		case "url", "http_url":
			message = fmt.Sprintf("The %s field must be a valid URL.", name)
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, e.Tag())
		}
		errorMap[field] = message
	}
	return errorMap
}

func orEqual(tag string) string {
	if tag == "gte" {
		return "or equal to "
	}
	return ""
}
