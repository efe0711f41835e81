// internal/app/system/httpjson/httpjson.go

// Package httpjson is the JSON request/response plumbing shared by every
// API handler: a uniform success envelope, error rendering keyed off the
// error taxonomy, and bounded request decoding.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/limits"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Respond writes a success envelope. A nil payload renders as
// {"success":true}.
func Respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes an error envelope. Internal and external errors are logged
// with their cause; the client only sees the taxonomy message.
func Fail(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apierr.Status(err)
	if status >= 500 && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: apierr.Message(err)})
}

// Decode reads a JSON request body into dst, bounded by the request body
// limit. Malformed bodies come back as validation errors.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, limits.MaxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.Validation("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apierr.Validation("request body too large")
		}
		return apierr.Validation("malformed JSON body")
	}
	return nil
}
