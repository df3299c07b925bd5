package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// tokenIssuer namespaces tokens to this deployment. A token minted by
	// another system that happens to share the signing secret still fails
	// verification on the issuer claim.
	tokenIssuer = "todoapi"

	// tokenTTL is fixed at two hours: short enough to bound exposure for a
	// system with no revocation, long enough to avoid constant re-logins.
	tokenTTL = 2 * time.Hour
)

// IssuedToken is a freshly signed token together with the display metadata
// the login response carries.
type IssuedToken struct {
	AccessToken string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	ExpiresIn   int
}

// TokenCodec issues and verifies HS256-signed bearer tokens. The signing
// secret is injected at construction and read-only afterwards, so a single
// codec is safe for concurrent use across requests.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec signing with the given shared secret
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    tokenTTL,
		now:    time.Now,
	}
}

// NewTokenCodecAt creates a codec reading the clock from now instead of
// time.Now. Tests use it to mint tokens at chosen instants.
func NewTokenCodecAt(secret string, now func() time.Time) *TokenCodec {
	codec := NewTokenCodec(secret)
	codec.now = now
	return codec
}

// Issue produces a signed token whose subject is the given login.
// Failures here are server faults (unusable secret, signing error), not
// client errors.
func (c *TokenCodec) Issue(subject string) (*IssuedToken, error) {
	if len(c.secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret is empty", ErrTokenCreation)
	}

	issuedAt := c.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(c.ttl)

	claims := jwt.MapClaims{
		"iss": tokenIssuer,
		"sub": subject,
		"iat": issuedAt.Unix(),
		"exp": expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}

	return &IssuedToken{
		AccessToken: signed,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
		ExpiresIn:   int(c.ttl / time.Second),
	}, nil
}

// Verify checks signature, issuer and expiry and returns the subject claim.
// An expired token yields *TokenExpiredError carrying the expiry instant;
// every other failure yields ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// Expiry is only reported as such when the signature and issuer
		// held up. A tampered issuer breaks the signature anyway, but a
		// foreign deployment sharing the secret signs its issuer validly.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			if expiredAt := expiryOf(token); !expiredAt.IsZero() {
				return "", &TokenExpiredError{ExpiredAt: expiredAt}
			}
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}

	return sub, nil
}

// expiryOf extracts the exp claim from a parsed (possibly invalid) token
func expiryOf(token *jwt.Token) time.Time {
	if token == nil {
		return time.Time{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
