package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	issued, err := codec.Issue("alice")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if issued.AccessToken == "" {
		t.Fatal("issued an empty token")
	}
	if issued.ExpiresIn != int(tokenTTL/time.Second) {
		t.Errorf("expires_in = %d, want %d", issued.ExpiresIn, int(tokenTTL/time.Second))
	}
	if !issued.ExpiresAt.Equal(issued.IssuedAt.Add(tokenTTL)) {
		t.Errorf("expiry %v is not issuance %v plus the token lifetime", issued.ExpiresAt, issued.IssuedAt)
	}

	subject, err := codec.Verify(issued.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if subject != "alice" {
		t.Errorf("subject = %q, want %q", subject, "alice")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	codec := NewTokenCodec(testSecret)
	codec.now = func() time.Time { return issuedAt }

	issued, err := codec.Issue("alice")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// Move the clock one second past the expiry instant.
	codec.now = func() time.Time { return issuedAt.Add(tokenTTL + time.Second) }

	_, err = codec.Verify(issued.AccessToken)
	if err == nil {
		t.Fatal("expected an error for an expired token")
	}

	var expired *TokenExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("error = %v, want TokenExpiredError", err)
	}
	if !expired.ExpiredAt.Equal(issuedAt.Add(tokenTTL)) {
		t.Errorf("reported expiry %v, want %v", expired.ExpiredAt, issuedAt.Add(tokenTTL))
	}
	if !strings.Contains(expired.Error(), "token has expired at") {
		t.Errorf("unexpected error message: %q", expired.Error())
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issued, err := NewTokenCodec(testSecret).Issue("alice")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = NewTokenCodec("a-different-secret").Verify(issued.AccessToken)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	// A token from a foreign issuer must read as invalid, not expired,
	// even when it is also past its expiry.
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	claims := jwt.MapClaims{
		"iss": "someone-else",
		"sub": "alice",
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	codec := NewTokenCodec(testSecret)
	_, err = codec.Verify(raw)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
	var expired *TokenExpiredError
	if errors.As(err, &expired) {
		t.Error("foreign-issuer token must not be reported as expired")
	}
}

func TestVerifyWrongSigningMethod(t *testing.T) {
	// alg=none tokens must be rejected outright.
	claims := jwt.MapClaims{
		"iss": tokenIssuer,
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	_, err = NewTokenCodec(testSecret).Verify(raw)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyMalformedTokens(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	for _, tc := range []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"garbage", "not.a.token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := codec.Verify(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	for _, tc := range []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"no subject", jwt.MapClaims{
			"iss": tokenIssuer,
			"exp": time.Now().Add(time.Hour).Unix(),
		}},
		{"blank subject", jwt.MapClaims{
			"iss": tokenIssuer,
			"sub": "",
			"exp": time.Now().Add(time.Hour).Unix(),
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc.claims).SignedString([]byte(testSecret))
			if err != nil {
				t.Fatalf("signing failed: %v", err)
			}
			if _, err := codec.Verify(raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerifyTrimsWhitespace(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	issued, err := codec.Issue("alice")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	subject, err := codec.Verify("  " + issued.AccessToken + "\n")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if subject != "alice" {
		t.Errorf("subject = %q, want %q", subject, "alice")
	}
}
