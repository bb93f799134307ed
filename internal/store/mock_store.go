// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite while keeping owner-scoping semantics

package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	users   map[string]*User // keyed by user ID
	byEmail map[string]string
	tasks   map[string]*Task // keyed by task ID
	seq     map[string]int   // insertion order, for stable newest-first listing
	next    int

	// PingErr is returned by Ping when set.
	PingErr error
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
		tasks:   make(map[string]*Task),
		seq:     make(map[string]int),
	}
}

// CreateUser stores a new user, rejecting duplicate emails case-insensitively.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := m.byEmail[key]; exists {
		return ErrEmailExists
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	u := *user
	m.users[u.ID] = &u
	m.byEmail[key] = u.ID
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *u
	return &result, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	result := *m.users[id]
	return &result, nil
}

// CreateTask stores a new task.
func (m *MockStore) CreateTask(ctx context.Context, task *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[task.OwnerID]; !ok {
		return errors.New("owner does not exist")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.UpdatedAt = task.CreatedAt
	if task.Status == "" {
		task.Status = TaskStatusPending
	}

	t := *task
	m.tasks[t.ID] = &t
	m.next++
	m.seq[t.ID] = m.next
	return nil
}

// ownedLocked returns the task if it exists and belongs to ownerID. Caller holds mu.
func (m *MockStore) ownedLocked(ownerID, id string) (*Task, bool) {
	t, ok := m.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, false
	}
	return t, true
}

// GetTask retrieves an owned task by ID.
func (m *MockStore) GetTask(ctx context.Context, ownerID, id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.ownedLocked(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	result := *t
	return &result, nil
}

// ListTasks returns a page of ownerID's tasks, newest first, and the filtered total.
func (m *MockStore) ListTasks(ctx context.Context, ownerID string, filter TaskFilter) ([]*Task, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := foldText(filter.Search)
	var matched []*Task
	for _, t := range m.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(foldText(t.Title), search) &&
			!strings.Contains(foldText(t.Description), search) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return m.seq[matched[i].ID] > m.seq[matched[j].ID]
	})

	total := len(matched)
	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	page := make([]*Task, 0, end-start)
	for _, t := range matched[start:end] {
		c := *t
		page = append(page, &c)
	}
	return page, total, nil
}

// UpdateTask applies patch to an owned task.
func (m *MockStore) UpdateTask(ctx context.Context, ownerID, id string, patch TaskPatch) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.ownedLocked(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	if !patch.Empty() {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		t.UpdatedAt = time.Now().UTC()
	}

	result := *t
	return &result, nil
}

// DeleteTask removes an owned task.
func (m *MockStore) DeleteTask(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ownedLocked(ownerID, id); !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	delete(m.seq, id)
	return nil
}

// DeleteTasks removes every listed task owned by ownerID.
func (m *MockStore) DeleteTasks(ctx context.Context, ownerID string, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := m.ownedLocked(ownerID, id); ok {
			delete(m.tasks, id)
			delete(m.seq, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping returns PingErr.
func (m *MockStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}
