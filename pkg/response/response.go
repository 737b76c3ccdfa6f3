package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"lexivo/pkg/apperr"
	"lexivo/pkg/logger"
)

const (
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeNotFound       = "not_found"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal_error"
)

type envelope struct {
	Data any `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JSON writes v as-is with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

// Data writes {"data": v}.
func Data(w http.ResponseWriter, status int, v any) {
	JSON(w, status, envelope{Data: v})
}

// Error writes {"error": message, "code": code}. An empty code is derived from status.
func Error(w http.ResponseWriter, status int, code, message string) {
	if code == "" {
		code = defaultCode(status)
	}
	JSON(w, status, errorBody{Error: message, Code: code})
}

// FromError maps a service error onto the 400/401/404/500 buckets.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		Error(w, http.StatusBadRequest, CodeInvalidRequest, apperr.Message(err, "Invalid request"))
	case errors.Is(err, apperr.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
	case errors.Is(err, apperr.ErrNotFound):
		Error(w, http.StatusNotFound, CodeNotFound, apperr.Message(err, "Not found"))
	case errors.Is(err, apperr.ErrNotConfigured):
		logger.Sugar.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		Error(w, http.StatusInternalServerError, CodeInternal, "AI service is not configured")
	default:
		logger.Sugar.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		Error(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
	}
}

func defaultCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
