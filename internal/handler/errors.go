package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a message for people.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError rejects a request before it reaches the service layer
// (e.g. missing or malformed body or parameter).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message)
}

// respondError maps a service error onto its HTTP status. what names the
// resource that was looked up, for the 404 message (e.g. "trip").
// Unexpected errors are logged and answered with a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", notFoundMessage(err, what))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", unwrapMessage(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", unwrapMessage(err, domain.ErrUnauthorized))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part of a wrapped error by
// dropping the operation prefixes and the sentinel's own text, e.g.
// "service.TripService.Finish: trip 7 already finished: conflict" → "trip 7 already finished".
// A bare sentinel yields its own text.
func unwrapMessage(err, sentinel error) string {
	var kept []string
	for _, part := range strings.Split(err.Error(), ": ") {
		if part == sentinel.Error() || isOp(part) {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return sentinel.Error()
	}
	return strings.Join(kept, ": ")
}

// isOp reports whether s looks like an operation prefix such as
// "service.TripService.Finish" or "passengers.GetByID".
func isOp(s string) bool {
	return strings.Contains(s, ".") && !strings.ContainsAny(s, " \t")
}

// notFoundMessage prefers the detail the service attached over the generic
// "<what> not found".
func notFoundMessage(err error, what string) string {
	if detail := unwrapMessage(err, domain.ErrNotFound); detail != domain.ErrNotFound.Error() {
		return detail + " not found"
	}
	return what + " not found"
}

// decodeBody decodes a JSON request body into dst. On failure it writes the
// response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return false
	}
	requestError(w, "request body must be a JSON object")
	return false
}
