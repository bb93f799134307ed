// ABOUTME: Store interfaces and data types for taskd persistence
// ABOUTME: Defines User, Task, and the owner-scoped UserStore/TaskStore contracts

package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when trying to create a user with an email already in use
var ErrEmailExists = errors.New("email already exists")

// User is a registered account. PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Task is a unit of work owned by exactly one user.
// OwnerID is set at creation and never changes.
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// foldText is the case folding used by task search in every store.
// It folds the full Unicode range, not just ASCII.
func foldText(s string) string {
	return strings.ToLower(s)
}

// TaskFilter narrows and pages a task listing. Zero values mean "no filter".
type TaskFilter struct {
	Status TaskStatus
	Search string // case-insensitive substring of title or description
	Limit  int
	Offset int
}

// TaskPatch holds the mutable task fields. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// TaskStore persists tasks. Every method except CreateTask is scoped by owner:
// a task owned by someone else behaves exactly like a missing task.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, ownerID, id string) (*Task, error)
	ListTasks(ctx context.Context, ownerID string, filter TaskFilter) ([]*Task, int, error)
	UpdateTask(ctx context.Context, ownerID, id string, patch TaskPatch) (*Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
	DeleteTasks(ctx context.Context, ownerID string, ids []string) (int, error)
}

// Store combines all persistence concerns.
type Store interface {
	UserStore
	TaskStore

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
