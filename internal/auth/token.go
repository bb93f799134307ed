// ABOUTME: JWT issuance and verification for user bearer tokens
// ABOUTME: Uses HS256 signing with a configured secret and a fixed lifetime

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the minimum length of the HS256 signing secret in bytes.
const MinSecretLength = 32

// DefaultTokenTTL is used when no token lifetime is configured.
const DefaultTokenTTL = 24 * time.Hour

// Token errors
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token expired")
	ErrMissingClaim   = errors.New("missing required claim")
	ErrSecretTooShort = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
)

// Claims is the payload of a user token.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies user tokens.
type TokenService interface {
	Issue(userID, email string) (token string, expiresAt time.Time, err error)
	Verify(tokenString string) (*Claims, error)
}

// JWTService implements TokenService using HS256 signed JWTs
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a token service. The secret must be at least
// MinSecretLength bytes. A ttl <= 0 selects DefaultTokenTTL.
func NewJWTService(secret []byte, ttl time.Duration) (*JWTService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token whose subject is userID.
func (s *JWTService) Issue(userID, email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry, then returns the claims.
// The signature is checked before any claim is trusted.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w: sub", ErrInvalidToken, ErrMissingClaim)
	}

	return claims, nil
}
