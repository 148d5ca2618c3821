// Package apierror defines the wire-level error envelope returned by the API.
package apierror

import (
	"encoding/json"
	"net/http"
)

// APIError is an error with an associated HTTP status and machine code.
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ToJSON renders the error body. Falls back to a static payload if the
// envelope itself cannot be marshalled.
func (e *APIError) ToJSON() []byte {
	data, err := json.Marshal(map[string]*APIError{"error": e})
	if err != nil {
		return []byte(`{"error":{"code":"INTERNAL","message":"internal server error"}}`)
	}
	return data
}

// BadRequest returns a 400 error.
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

// Validation returns a 400 error carrying per-field messages.
func Validation(message string, fields map[string]string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "VALIDATION", Message: message, Fields: fields}
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// Store returns a 502 error for transport/permission failures from the
// remote store.
func Store(message string) *APIError {
	return &APIError{Status: http.StatusBadGateway, Code: "STORE", Message: message}
}

// Subscription returns a 503 error for a failed live query.
func Subscription(message string) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Code: "SUBSCRIPTION", Message: message}
}

// InternalError returns a 500 error.
func InternalError(message string) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: message}
}
