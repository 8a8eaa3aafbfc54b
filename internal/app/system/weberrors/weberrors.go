// internal/app/system/weberrors/weberrors.go

// Package weberrors renders the JSON error envelope used by every API
// endpoint: {"error": {"code": "...", "message": "..."}}.
package weberrors

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the envelope.
const (
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
	CodePartialCascade   = "partial_cascade"
	CodeInternal         = "internal_error"
)

type envelope struct {
	Error body `json:"error"`
}

type body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Render writes the error envelope with the given status.
func Render(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: body{Code: code, Message: message}})
}

// RenderValidation writes a 400 for malformed input. No store access has
// happened when this fires.
func RenderValidation(w http.ResponseWriter, message string) {
	Render(w, http.StatusBadRequest, CodeValidationFailed, message)
}

// RenderNotFound writes a 404 for a reference that doesn't resolve.
func RenderNotFound(w http.ResponseWriter, message string) {
	Render(w, http.StatusNotFound, CodeNotFound, message)
}

// RenderStoreUnavailable writes a 503. The request may be retried by the
// caller; the server never retries internally.
func RenderStoreUnavailable(w http.ResponseWriter) {
	Render(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "storage is unavailable, try again later")
}

// RenderPartialCascade writes a 500 for a delete whose records are gone but
// whose reference retraction failed. The message tells the caller the
// deletion itself took effect.
func RenderPartialCascade(w http.ResponseWriter) {
	Render(w, http.StatusInternalServerError, CodePartialCascade,
		"thread deleted, but reference cleanup failed and was queued for repair")
}

// RenderInternal writes a generic 500.
func RenderInternal(w http.ResponseWriter) {
	Render(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
