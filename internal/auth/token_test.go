// ABOUTME: Unit tests for JWT token issuance and verification
// ABOUTME: Tests valid tokens, tampered tokens, wrong algorithms, and expiry

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSecret is a 32-byte secret that meets MinSecretLength.
var testSecret = []byte("test-secret-key-for-jwt-signing!")

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService([]byte("too-short"), time.Hour)
	if !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("NewJWTService() error = %v, want ErrSecretTooShort", err)
	}
}

func TestNewJWTService_DefaultTTL(t *testing.T) {
	svc, err := NewJWTService(testSecret, 0)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	if svc.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", svc.ttl, DefaultTokenTTL)
	}
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := newTestJWTService(t)

	token, expiresAt, err := svc.Issue("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if d := time.Until(expiresAt); d < 59*time.Minute || d > time.Hour {
		t.Errorf("expiresAt is %v from now, want about 1h", d)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-123")
	}
	if claims.Email != "a@x.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "a@x.com")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Error("expected iat and exp claims")
	}
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newTestJWTService(t)

	otherSecret := []byte("a-completely-different-secret-32")
	other, err := NewJWTService(otherSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	foreign, _, _ := other.Issue("user-123", "")

	valid, _, _ := svc.Issue("user-123", "")
	parts := strings.Split(valid, ".")
	tamperedPayload := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	hs512Token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
		{name: "wrong secret", token: foreign},
		{name: "tampered payload", token: tamperedPayload},
		{name: "alg none", token: noneToken},
		{name: "wrong HMAC variant", token: hs512Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTService_MissingExpiry(t *testing.T) {
	svc := newTestJWTService(t)

	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
	}).SignedString(testSecret)

	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTService_MissingSubject(t *testing.T) {
	svc := newTestJWTService(t)

	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)

	_, err := svc.Verify(token)
	if !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Verify() error = %v, want ErrMissingClaim", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(t)

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	token, _, err := svc.Issue("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Still valid just before expiry.
	svc.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("Verify() before expiry error = %v", err)
	}

	// Signature intact, but the lifetime has elapsed.
	svc.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	_, err = svc.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := newTestJWTService(t)

	a, _, _ := svc.Issue("user-123", "")
	b, _, _ := svc.Issue("user-123", "")
	if a == b {
		t.Error("two tokens issued in the same second should differ by jti")
	}
}
