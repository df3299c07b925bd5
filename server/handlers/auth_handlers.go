package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/auth"
)

// CredentialsRequest is the payload for both login and registration
type CredentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and its display metadata
type LoginResponse struct {
	Refresh     time.Time `json:"refresh"`
	TokenType   string    `json:"token_type"`
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
}

// RegisterResponse is the projection of a created user (never the hash)
type RegisterResponse struct {
	ID    uuid.UUID `json:"id"`
	Login string    `json:"login"`
	Role  string    `json:"role"`
}

// V1Login handles POST /auth/login requests
// @Summary Log in
// @Description Verifies the credentials and returns a bearer token valid for two hours
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Issued token"
// @Failure 400 {object} ValidationResponse "Blank login or password"
// @Failure 401 {object} ErrorResponse "Unknown login or wrong password (uniform)"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /auth/login [post]
func V1Login(service *auth.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if ok := decodeCredentials(w, r, logger, &req); !ok {
			return
		}

		token, err := service.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusOK, LoginResponse{
			Refresh:     token.IssuedAt,
			TokenType:   "bearer",
			AccessToken: token.AccessToken,
			ExpiresIn:   token.ExpiresIn,
		})
	}
}

// V1Register handles POST /auth/register requests
// @Summary Register a user
// @Description Creates a new user with the USER role
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Registration payload"
// @Success 201 {object} RegisterResponse "Created user"
// @Failure 400 {object} ValidationResponse "Blank login or password"
// @Failure 409 {object} ErrorResponse "Login already taken"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /auth/register [post]
func V1Register(service *auth.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if ok := decodeCredentials(w, r, logger, &req); !ok {
			return
		}

		user, err := service.Register(r.Context(), req.Login, req.Password, auth.RoleUser)
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusCreated, RegisterResponse{
			ID:    user.ID,
			Login: user.Login,
			Role:  user.Role,
		})
	}
}

// V1RegisterAdmin handles POST /admin/register requests. The ADMIN role is
// fixed server-side and never accepted from the client; the route itself is
// gated on an admin principal.
// @Summary Register an admin user
// @Description Creates a new user with the ADMIN role. Requires an admin token.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Registration payload"
// @Success 201 "Created"
// @Failure 400 {object} ValidationResponse "Blank login or password"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Missing credentials or not an admin"
// @Failure 409 {object} ErrorResponse "Login already taken"
// @Router /admin/register [post]
func V1RegisterAdmin(service *auth.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if ok := decodeCredentials(w, r, logger, &req); !ok {
			return
		}

		if _, err := service.Register(r.Context(), req.Login, req.Password, auth.RoleAdmin); err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusCreated, nil)
	}
}

// decodeCredentials decodes the request body and runs the non-blank checks
// shared by login and registration. It writes the error response itself and
// reports whether the handler should continue.
func decodeCredentials(w http.ResponseWriter, r *http.Request, logger *zap.Logger, req *CredentialsRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		SendErrorResponse(w, logger, &auth.InvalidInputError{
			Fields: map[string]string{"body": "Malformed request body."},
		}, http.StatusBadRequest)
		return false
	}

	fields := make(map[string]string)
	if strings.TrimSpace(req.Login) == "" {
		fields["login"] = "Invalid username"
	}
	if strings.TrimSpace(req.Password) == "" {
		fields["password"] = "Invalid password"
	}
	if len(fields) > 0 {
		SendErrorResponse(w, logger, &auth.InvalidInputError{Fields: fields}, http.StatusBadRequest)
		return false
	}

	return true
}
