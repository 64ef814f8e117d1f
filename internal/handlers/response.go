package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/rsvp"
	"github.com/James9446/patricia-james-sub001/internal/storage"
)

const maxJSONBodyBytes = 1 << 20

// Response is the envelope of every JSON API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// apiError is an error with a client-facing status and message.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(format string, args ...interface{}) error {
	return &apiError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func forbidden(message string) error {
	return &apiError{status: http.StatusForbidden, message: message}
}

func conflict(message string) error {
	return &apiError{status: http.StatusConflict, message: message}
}

func tooLarge(limit int64) error {
	return &apiError{
		status:  http.StatusRequestEntityTooLarge,
		message: "upload exceeds the " + humanize.IBytes(uint64(limit)) + " limit",
	}
}

var errUnauthorized = &apiError{status: http.StatusUnauthorized, message: "authentication required"}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Default().Error("failed to encode response", "err", err)
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: true, Message: message})
}

// writeError maps err to a status code. Unknown errors are logged and
// reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		writeErrorLog(r, err)
	}
	writeJSON(w, status, Response{Success: false, Message: message})
}

func writeErrorLog(r *http.Request, err error) {
	slog.Default().ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "err", err)
}

func errorStatus(err error) (int, string) {
	var apiErr *apiError
	var validationErr *rsvp.ValidationError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.status, apiErr.message
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, rsvp.ErrInvalidStatus),
		errors.Is(err, rsvp.ErrNoPartner),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, rsvp.ErrPlusOneNotAllowed):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, rsvp.ErrGuestNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, rsvp.ErrAmbiguousGuest),
		errors.Is(err, rsvp.ErrPartnerConflict):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return badRequest("invalid JSON body")
	}
	return nil
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s", name)
	}
	return id, nil
}

// intQuery parses an optional integer query parameter clamped to [lo, hi].
func intQuery(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s", name)
	}
	return min(max(v, lo), hi), nil
}
