// ABOUTME: User account store methods for the SQLite backend
// ABOUTME: Email uniqueness is enforced by the users.email UNIQUE index

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateUser inserts a new user. An empty ID is filled with a fresh UUID.
// Returns ErrEmailExists if the email is already registered.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.Name, user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "id", user.ID)
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var createdAt string

	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
