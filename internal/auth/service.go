// ABOUTME: Registration and login orchestration for user accounts
// ABOUTME: Validates input, hashes and verifies passwords, and issues bearer tokens

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/2389/taskd/internal/apperr"
	"github.com/2389/taskd/internal/store"
)

// Input limits.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores bytes beyond 72
	MaxNameLength     = 100
	maxEmailLength    = 254
)

// errBadCredentials is the single failure for unknown email and wrong password.
var errBadCredentials = apperr.Unauthenticated("invalid email or password")

// fallbackDummyHash is a valid bcrypt hash at the default cost, used for the
// unknown-email comparison when the dummy hash could not be computed.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// RegisterInput is the validated shape of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginInput is the validated shape of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResult is returned by a successful login.
type TokenResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service implements the registration/login boundary and token-based
// identity verification.
type Service struct {
	users  store.UserStore
	hasher PasswordHasher
	tokens TokenService
	logger *slog.Logger

	// dummyHash is compared against when the email is unknown, so that a
	// failed lookup costs the same as a failed password check.
	dummyOnce sync.Once
	dummyHash string
}

// NewService creates an auth service.
func NewService(users store.UserStore, hasher PasswordHasher, tokens TokenService, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register validates the input, hashes the password, and persists a new user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*store.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, apperr.Validation("name exceeds maximum length of 100 characters")
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, apperr.Internal(err)
	}

	user := &store.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, apperr.Conflict("email already registered")
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, apperr.Internal(err)
	}

	s.logger.Info("registered user", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues a token bound to the user's ID.
// Unknown email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*TokenResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to look up user", "error", err)
			return nil, apperr.Internal(err)
		}
		s.hasher.Verify(ctx, in.Password, s.dummy(ctx))
		return nil, errBadCredentials
	}

	if !s.hasher.Verify(ctx, in.Password, user.PasswordHash) {
		return nil, errBadCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		return nil, apperr.Internal(err)
	}

	s.logger.Debug("user logged in", "user_id", user.ID)
	return &TokenResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate verifies a bearer token and returns the identity it carries.
// Any verification failure is reported as Unauthenticated.
func (s *Service) Authenticate(token string) (*Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("invalid token")
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (*store.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		s.logger.Error("failed to get user", "error", err)
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// dummy lazily computes a hash at the configured cost. The caller's
// cancellation is detached so one aborted request cannot leave it empty.
func (s *Service) dummy(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), "taskd-timing-equalizer")
		if err != nil {
			s.logger.Warn("failed to compute dummy hash, using fallback", "error", err)
			s.dummyHash = fallbackDummyHash
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", apperr.Validation("email is required")
	}
	if len(email) > maxEmailLength {
		return "", apperr.Validation("email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", apperr.Validation("email is invalid")
	}
	return strings.ToLower(email), nil
}

func validatePassword(password string) error {
	if password == "" {
		return apperr.Validation("password is required")
	}
	if len(password) < MinPasswordLength {
		return apperr.Validation("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return apperr.Validation("password must be at most 72 bytes")
	}
	return nil
}
