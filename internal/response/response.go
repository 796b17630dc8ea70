// Package response provides shared JSON response helpers for HTTP handlers.
//
// The service speaks the exact wire format its original clients expect: flat
// bodies, no envelope. Errors are `{"error": "..."}` with an optional detail
// field carrying the underlying cause.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the standard error payload.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes `{"error": message}` with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// ErrorDetail writes `{"error": message, "detail": detail}` with the given status.
func ErrorDetail(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, ErrorBody{Error: message, Detail: detail})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, message)
}

// PayloadTooLarge writes a 413 response.
func PayloadTooLarge(w http.ResponseWriter, message string) {
	Error(w, http.StatusRequestEntityTooLarge, message)
}

// InternalError writes a 500 response with the failure cause in the detail field.
func InternalError(w http.ResponseWriter, message, detail string) {
	ErrorDetail(w, http.StatusInternalServerError, message, detail)
}

// NoContent writes an empty 204 response. Used for explicit OPTIONS routes.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
