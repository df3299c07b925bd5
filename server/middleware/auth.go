// Package middleware provides the per-request authentication gate and the
// route-level access policy for todoapi, plus supporting HTTP middleware
// (request ids, security headers, rate limiting).
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/auth"
	"github.com/ebogdum/todoapi/core/log"
	"github.com/ebogdum/todoapi/metrics"
	"github.com/ebogdum/todoapi/store"
)

// contextKey is the private type for request context keys
type contextKey string

const (
	principalKey contextKey = "principal"
	RequestIDKey contextKey = "request_id"
)

// V1AuthMiddleware is the request gate. It runs once per request, before
// any policy check or handler:
//
//   - no Authorization header → the request continues anonymously; routes
//     that need a principal are rejected later by the policy middleware,
//     keeping failure classification in one place
//   - header present → the bearer token is verified and its subject looked
//     up; failure of either terminates the request with a 401 and nothing
//     downstream runs
//
// A token whose subject no longer resolves to a user is treated exactly
// like an invalid token.
func V1AuthMiddleware(codec *auth.TokenCodec, users store.UserStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				// Anonymous: no token parsing is attempted
				next.ServeHTTP(w, r)
				return
			}

			// The "Bearer " prefix is optional on the wire; the remainder
			// (or the whole value) is the token.
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			subject, err := codec.Verify(token)
			if err != nil {
				var expired *auth.TokenExpiredError
				if errors.As(err, &expired) {
					metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
					logger.Debug("Token expired", zap.Time("expired_at", expired.ExpiredAt))
					writeError(w, logger, http.StatusUnauthorized, capitalize(expired.Error()))
					return
				}
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				logger.Debug("Token verification failed", zap.Error(err))
				writeError(w, logger, http.StatusUnauthorized, "Invalid token.")
				return
			}

			user, err := users.GetByLogin(r.Context(), subject)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// A token naming an unknown user is invalid, not "not found"
					metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
					logger.Debug("Token subject not found", zap.String("login", log.SanitizeLogin(subject)))
					writeError(w, logger, http.StatusUnauthorized, "Invalid token.")
					return
				}
				logger.Error("User lookup failed during authentication", zap.Error(err))
				writeError(w, logger, http.StatusInternalServerError, "Unexpected server error.")
				return
			}

			metrics.TokenVerificationsTotal.WithLabelValues("success").Inc()

			principal := &auth.Principal{
				ID:    user.ID,
				Login: user.Login,
				Role:  auth.ParseRole(user.Role),
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)

			logger.Debug("Request authenticated",
				zap.String("login", log.SanitizeLogin(principal.Login)),
				zap.String("role", string(principal.Role)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// V1RequireAuth passes any authenticated principal and rejects anonymous
// requests with a 403. Invalid credentials never reach this point; the gate
// already rejected them with a 401.
func V1RequireAuth(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetPrincipal(r.Context()); !ok {
				writeError(w, logger, http.StatusForbidden, "Access denied.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// V1RequireRole passes only authenticated principals holding the given role
func V1RequireRole(role auth.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok || principal.Role != role {
				writeError(w, logger, http.StatusForbidden, "Access denied.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// V1RequestIDMiddleware adds a unique request ID to each request context
func V1RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Generate a random request ID
			requestID := generateRequestID()

			// Add request ID to response header
			w.Header().Set("X-Request-ID", requestID)

			// Add request ID to context
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)
		})
	}
}

// generateRequestID creates a random request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// GetPrincipal extracts the authenticated principal from request context
func GetPrincipal(ctx context.Context) (*auth.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*auth.Principal)
	return principal, ok
}

// errorEnvelope mirrors the envelope emitted by server/handlers so gate and
// boundary rejections look identical to clients.
type errorEnvelope struct {
	StatusCode int       `json:"statusCode"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"errorMessage"`
}

func writeError(w http.ResponseWriter, logger *zap.Logger, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	envelope := errorEnvelope{
		StatusCode: statusCode,
		Status:     statusName(statusCode),
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		Message:    message,
	}

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// statusName renders an HTTP status code as its constant-style name,
// e.g. 403 → "FORBIDDEN"
func statusName(statusCode int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(statusCode), " ", "_"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
