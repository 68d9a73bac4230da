// Package handler translates HTTP requests into store operations.
//
// Each endpoint decodes its input, calls exactly one service method and
// writes the result. Handlers never inspect error text: the status code comes
// from apperror.KindOf.
package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// SUCCESS FORMAT:
// Every success body carries a message plus the payload under a key named
// after its type:
//   {"message": "Mouse retrieved successfully", "mouse": {...}}
//   {"message": "Found 2 mice in lab", "mice": [...]}
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "Mouse not found"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/lab-records/internal/apperror"
)

// maxBodyBytes caps request bodies; records here are small.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error kind (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeResult sends {"message": message, key: payload}. An empty key sends
// the message alone.
func writeResult(w http.ResponseWriter, status int, message, key string, payload any) {
	body := map[string]any{"message": message}
	if key != "" {
		body[key] = payload
	}
	writeJSON(w, status, body)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindMissingFields, apperror.KindInvalidIdentifier, apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindAlreadyExists:
		return http.StatusConflict
	case apperror.KindUserNotFound, apperror.KindWrongPassword:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// The service layer returns *apperror.AppError values, possibly wrapped with
// fmt.Errorf("...: %w"). errors.As walks the chain to find the AppError, so
// wrapping never changes the status.
//
// Unknown errors become a generic 500. The raw message might contain SQL or
// file paths, so it is logged, never sent.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindUnknown {
		writeJSON(w, statusFor(appErr.Kind), ErrorResponse{
			Error:   string(appErr.Kind),
			Message: appErr.Message,
		})
		return
	}

	logger.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   string(apperror.KindUnknown),
		Message: "An internal error occurred",
	})
}

// decodeJSON reads the request body into dst. A malformed body is reported
// as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("Invalid JSON body: %v", err))
	}
	return nil
}

// pathParam returns the decoded value of a URL parameter.
//
// chi matches against r.URL.RawPath when it is set, which happens whenever
// the request escapes a reserved character such as "/" (%2F). The parameter
// then arrives still escaped. Otherwise chi matched the decoded r.URL.Path
// and the value must be used as is; a literal "%" in it is not an escape.
func pathParam(r *http.Request, key string) (string, error) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", apperror.ValidationFailed(key, fmt.Sprintf("Invalid %s in path", key))
	}
	return decoded, nil
}

// writeDeleted answers a delete: 200 when a record was removed, 404 when
// none matched.
func writeDeleted(w http.ResponseWriter, logger *slog.Logger, resource, id string, deleted bool, err error) {
	if err != nil {
		writeError(w, logger, err)
		return
	}
	if !deleted {
		writeError(w, logger, apperror.NotFound(resource, id))
		return
	}
	writeResult(w, http.StatusOK, resource+" deleted successfully", "", nil)
}
