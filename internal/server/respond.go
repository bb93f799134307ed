// ABOUTME: JSON request decoding and response writing for the HTTP API
// ABOUTME: Maps apperr kinds to status codes and never leaks internal error text

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/taskd/internal/apperr"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// writeJSON writes payload as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// sendJSONError writes {"error": message} with the given status code.
func sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError translates a service error into a status code and a caller-safe
// message. Internal failures are logged with their cause and reported as a
// generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get(requestIDHeader),
			"error", err,
		)
	}
	sendJSONError(w, apperr.HTTPStatus(kind), apperr.PublicMessage(err))
}

// decodeJSON reads a single JSON object from the request body into dst.
// With strict set, fields not present in dst are rejected. On failure it
// writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(dst); err != nil {
		status, msg := decodeErrorMessage(err)
		sendJSONError(w, status, msg)
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		sendJSONError(w, http.StatusBadRequest, "request body must contain a single JSON object")
		return false
	}
	return true
}

func decodeErrorMessage(err error) (int, string) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, "request body is required"
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "invalid JSON body"
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return http.StatusBadRequest, fmt.Sprintf("invalid value for field %q", typeErr.Field)
		}
		return http.StatusBadRequest, "invalid JSON body"
	default:
		// DisallowUnknownFields reports `json: unknown field "x"` with no typed error.
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return http.StatusBadRequest, "unknown field " + field
		}
		return http.StatusBadRequest, "invalid JSON body"
	}
}
