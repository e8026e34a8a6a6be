// Package respond provides utilities for sending HTTP responses in JSON format.
// Every error body has the single shape {"message": "..."}; internal details
// are logged, never returned.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"news-api/internal/observability/logging"
)

// ErrorBody is the uniform error payload.
type ErrorBody struct {
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Log the error but cannot send error response as headers already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Message writes {"message": msg} with the given status code.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Message: msg})
}

// safeFragments mark error messages that are fit to show a client.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"cannot be",
	"too long",
}

// SafeError writes err as the uniform error body.
//
// An *AppError supplies its own status and user message. Otherwise 5xx codes
// always answer with the generic status text and log the sanitized error;
// 4xx codes echo err only when it reads like a validation message.
func SafeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil && appErr.Code >= http.StatusInternalServerError {
			logError(r, appErr.Code, appErr.Err)
		}
		Message(w, appErr.Code, appErr.UserMsg)
		return
	}

	if code >= http.StatusInternalServerError {
		logError(r, code, err)
		Message(w, code, http.StatusText(code))
		return
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, frag := range safeFragments {
		if strings.Contains(lower, frag) {
			Message(w, code, msg)
			return
		}
	}
	Message(w, code, http.StatusText(code))
}

func logError(r *http.Request, code int, err error) {
	logger := slog.Default()
	if r != nil {
		ctx := r.Context()
		logger = logging.WithRequestID(ctx, logging.FromContext(ctx)).With(
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}
	logger.Error("request failed",
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged for debugging)
	Code    int    // HTTP status code
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error, implementing the errors.Unwrap interface.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}
