// Package handlers implements the HTTP handlers for todoapi: login,
// registration and the ownership-scoped task CRUD. All error responses are
// produced here through a single envelope so clients see one shape
// regardless of which layer rejected the request.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/auth"
	"github.com/ebogdum/todoapi/metrics"
	"github.com/ebogdum/todoapi/store"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	StatusCode int       `json:"statusCode"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"errorMessage"`
}

// ValidationResponse is the envelope for input validation failures,
// carrying a field→message map instead of a single message
type ValidationResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Errors     map[string]string `json:"errors"`
}

// SendErrorResponse classifies err and sends the matching envelope.
// Unclassified errors fall back to defaultStatusCode with a generic message
// so internal detail never leaks to clients.
func SendErrorResponse(w http.ResponseWriter, logger *zap.Logger, err error, defaultStatusCode int) {
	var statusCode int
	var message string

	var invalidInput *auth.InvalidInputError
	var expired *auth.TokenExpiredError

	switch {
	case errors.As(err, &invalidInput):
		sendValidationResponse(w, logger, invalidInput.Fields)
		return
	case errors.Is(err, store.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Task not found."
	case errors.Is(err, store.ErrAlreadyExists):
		statusCode = http.StatusConflict
		message = "User already exists."
	case errors.Is(err, auth.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid login or password."
	case errors.As(err, &expired):
		statusCode = http.StatusUnauthorized
		message = capitalize(expired.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		statusCode = http.StatusUnauthorized
		message = "Invalid token."
	case errors.Is(err, auth.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Access denied."
	case errors.Is(err, auth.ErrTokenCreation):
		statusCode = http.StatusInternalServerError
		message = "Error generating token."
	default:
		statusCode = defaultStatusCode
		message = "Unexpected server error."
	}

	if statusCode >= http.StatusInternalServerError {
		metrics.ErrorsTotal.WithLabelValues("handlers", "internal").Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		StatusCode: statusCode,
		Status:     statusName(statusCode),
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		Message:    message,
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("Failed to encode error response", zap.Error(encodeErr))
		// Fallback to plain text
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "Internal error occurred")
	}

	logger.Info("Error response sent",
		zap.Int("status_code", statusCode),
		zap.Error(err))
}

func sendValidationResponse(w http.ResponseWriter, logger *zap.Logger, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	response := ValidationResponse{
		StatusCode: http.StatusBadRequest,
		Status:     statusName(http.StatusBadRequest),
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		Errors:     fields,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode validation response", zap.Error(err))
	}
}

// SendJSONResponse sends a JSON response with the given status code
func SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Fprintf(w, `{"error":"Failed to encode response"}`)
	}
}

// statusName renders an HTTP status code as its constant-style name,
// e.g. 404 → "NOT_FOUND"
func statusName(statusCode int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(statusCode), " ", "_"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
