// Package auth provides the stateless authentication core for todoapi:
// bearer token issuance and verification, password hashing, and the
// login/registration service. Authorization decisions (role gates, ownership)
// are made by the server middleware and task engine on top of the Principal
// resolved here.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the access level assigned to a user at registration
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored role string onto a Role, defaulting to RoleUser
// for anything unrecognized so a corrupted record never grants admin.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the authenticated identity resolved for one request.
// It is attached to the request context by the auth middleware and is
// never mutated afterwards.
type Principal struct {
	ID    uuid.UUID
	Login string
	Role  Role
}

// Common authentication errors
var (
	// ErrInvalidToken covers every verification failure that is not an
	// expiry: bad signature, wrong issuer, malformed structure, blank
	// input, or a subject that no longer resolves to a user.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned for both unknown logins and wrong
	// passwords so responses cannot be used to enumerate users.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrTokenCreation indicates a server-side fault while signing a token
	// (missing or unusable secret), never a client error.
	ErrTokenCreation = errors.New("token creation failed")

	// ErrForbidden indicates an authenticated principal lacking the role
	// required by the route.
	ErrForbidden = errors.New("access denied")
)

// TokenExpiredError reports a structurally valid token whose expiry has
// passed. Callers distinguish it from ErrInvalidToken because the retry
// guidance differs: expired means re-login, invalid means hard reject.
type TokenExpiredError struct {
	ExpiredAt time.Time
}

func (e *TokenExpiredError) Error() string {
	return fmt.Sprintf("token has expired at %s", e.ExpiredAt.UTC().Truncate(time.Second).Format(time.RFC3339))
}

// InvalidInputError carries a field→message map for blank or malformed
// request fields. It is translated to a 400 with the map in the body.
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	return "invalid input"
}
