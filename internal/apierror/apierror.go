// Package apierror holds the JSON error envelopes returned by the API.
// Handlers never put database or internal error text into these.
package apierror

// APIError is the body of every 4xx/5xx response that is not a field error.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError reports per-field problems, keyed by JSON field name.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
