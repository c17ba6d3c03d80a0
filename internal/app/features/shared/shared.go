// Package shared holds the JSON plumbing every feature handler uses.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/inputval"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON reads a JSON body into dst. An empty or malformed body is a
// validation error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.ValidationError("Invalid JSON.")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.ValidationError("Request body too large.")
		}
		if errors.Is(err, io.EOF) {
			return apperr.ValidationError("Invalid JSON.")
		}
		return apperr.Wrap(apperr.Validation, "Invalid JSON.", err)
	}
	return nil
}

// DecodeAndValidate decodes dst and runs its validate tags. The first
// failed rule becomes the error message.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := DecodeJSON(w, r, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// Validate runs v's validate tags and reports the first failure as a
// validation error.
func Validate(v any) error {
	if res := inputval.Validate(v); res.HasErrors() {
		return apperr.ValidationError(res.First())
	}
	return nil
}
