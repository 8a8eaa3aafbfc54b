// internal/app/system/webjson/webjson.go

// Package webjson holds the JSON request/response plumbing shared by the
// API features: body decoding with struct validation, and response
// encoding.
package webjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/threadhub/internal/app/system/limits"
	"github.com/go-playground/validator/v10"
)

// validate is shared across requests; validator.Validate is safe for
// concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrBadBody reports an unreadable or non-JSON request body.
var ErrBadBody = errors.New("request body is not valid JSON")

// DecodeValidate reads a JSON body into dst and runs struct validation.
// The body is capped at limits.MaxBodyBytes. Validation failures are
// returned as *validator.ValidationErrors wrapped with the offending
// field, so callers can render a useful message.
func DecodeValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
