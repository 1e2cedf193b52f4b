// Package apierror provides the standardized error envelope for the API.
// All errors returned to clients go through this package so that internal
// detail (stack traces, SQL errors, token internals) never leaks.
package apierror

// APIError is the canonical error envelope for 4xx/5xx responses that are
// not domain punch rejections (those carry their own status/message body).
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps per-field validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
