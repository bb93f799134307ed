// ABOUTME: Owner-scoped task operations with input validation and pagination
// ABOUTME: Translates store failures into apperr kinds for the HTTP layer

package tasks

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/2389/taskd/internal/apperr"
	"github.com/2389/taskd/internal/dedupe"
	"github.com/2389/taskd/internal/store"
)

// Listing and input limits.
const (
	DefaultPage    = 1
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxTitleLength = 200
	MaxBulkDelete  = 100

	MaxIdempotencyKeyLength = 255
)

var errTaskNotFound = apperr.NotFound("task not found")

// CreateInput is the body of a create request.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateInput is the body of a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// ListParams selects one page of tasks. Page and Limit values <= 0 fall
// back to the defaults.
type ListParams struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// Page is one page of a task listing.
type Page struct {
	Data       []*store.Task `json:"data"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}

// Service implements task CRUD for an authenticated owner.
type Service struct {
	store  store.TaskStore
	logger *slog.Logger

	// recent maps owner and idempotency key to the created task ID.
	recent *dedupe.Cache
	flight singleflight.Group
}

// NewService creates a task service.
func NewService(s store.TaskStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger}
}

// WithIdempotency makes CreateIdempotent remember created tasks in c.
func (s *Service) WithIdempotency(c *dedupe.Cache) *Service {
	s.recent = c
	return s
}

// Create stores a new pending task owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*store.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}

	task := &store.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      store.TaskStatusPending,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, s.internal("create task", err)
	}
	return task, nil
}

// CreateIdempotent creates a task unless ownerID already created one with the
// same key inside the cache window, in which case that task is returned and
// replayed is true. Concurrent calls with the same key share one create.
// An empty key, or a service without a cache, behaves like Create.
func (s *Service) CreateIdempotent(ctx context.Context, ownerID, key string, in CreateInput) (task *store.Task, replayed bool, err error) {
	if key == "" || s.recent == nil {
		task, err = s.Create(ctx, ownerID, in)
		return task, false, err
	}
	if len(key) > MaxIdempotencyKeyLength {
		return nil, false, apperr.Validation("idempotency key exceeds maximum length of 255 characters")
	}

	cacheKey := ownerID + "\x00" + key
	v, err, _ := s.flight.Do(cacheKey, func() (any, error) {
		// Callers sharing this flight must not fail because the first one
		// went away.
		ctx := context.WithoutCancel(ctx)
		if id, ok := s.recent.Get(cacheKey); ok {
			existing, err := s.store.GetTask(ctx, ownerID, id)
			if err == nil {
				return idempotentResult{task: existing, replayed: true}, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, s.internal("get task", err)
			}
			// The original task was deleted; the key starts over.
			s.recent.Forget(cacheKey)
		}

		created, err := s.Create(ctx, ownerID, in)
		if err != nil {
			return nil, err
		}
		s.recent.Put(cacheKey, created.ID)
		return idempotentResult{task: created}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(idempotentResult)
	return res.task, res.replayed, nil
}

type idempotentResult struct {
	task     *store.Task
	replayed bool
}

// List returns one page of ownerID's tasks, newest first.
func (s *Service) List(ctx context.Context, ownerID string, p ListParams) (*Page, error) {
	page, limit := p.Page, p.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > math.MaxInt/limit {
		return nil, apperr.Validation("page is out of range")
	}

	filter := store.TaskFilter{
		Search: strings.TrimSpace(p.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if p.Status != "" {
		status := store.TaskStatus(p.Status)
		if !status.Valid() {
			return nil, apperr.Validation("status must be pending or completed")
		}
		filter.Status = status
	}

	items, total, err := s.store.ListTasks(ctx, ownerID, filter)
	if err != nil {
		return nil, s.internal("list tasks", err)
	}
	if items == nil {
		items = []*store.Task{}
	}

	return &Page{
		Data:       items,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
		Page:       page,
		Limit:      limit,
	}, nil
}

// Get returns the task if it exists and belongs to ownerID.
func (s *Service) Get(ctx context.Context, ownerID, taskID string) (*store.Task, error) {
	task, err := s.store.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.translate("get task", err)
	}
	return task, nil
}

// Update applies the provided fields to ownerID's task.
func (s *Service) Update(ctx context.Context, ownerID, taskID string, in UpdateInput) (*store.Task, error) {
	var patch store.TaskPatch
	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if in.Description != nil {
		description, err := validateDescription(*in.Description)
		if err != nil {
			return nil, err
		}
		patch.Description = &description
	}
	if in.Status != nil {
		status := store.TaskStatus(*in.Status)
		if !status.Valid() {
			return nil, apperr.Validation("status must be pending or completed")
		}
		patch.Status = &status
	}

	task, err := s.store.UpdateTask(ctx, ownerID, taskID, patch)
	if err != nil {
		return nil, s.translate("update task", err)
	}
	return task, nil
}

// Delete permanently removes ownerID's task.
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) error {
	if err := s.store.DeleteTask(ctx, ownerID, taskID); err != nil {
		return s.translate("delete task", err)
	}
	return nil
}

// DeleteMany removes every listed task owned by ownerID and reports how many
// were deleted. IDs that are missing or owned by someone else are skipped.
func (s *Service) DeleteMany(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("ids must not be empty")
	}
	if len(ids) > MaxBulkDelete {
		return 0, apperr.Validation("at most 100 ids per request")
	}

	n, err := s.store.DeleteTasks(ctx, ownerID, uniqueIDs(ids))
	if err != nil {
		return 0, s.internal("delete tasks", err)
	}
	return n, nil
}

// translate maps ErrNotFound to the public not-found error and anything else
// to an internal error.
func (s *Service) translate(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errTaskNotFound
	}
	return s.internal(op, err)
}

func (s *Service) internal(op string, err error) error {
	s.logger.Error("failed to "+op, "error", err)
	return apperr.Internal(err)
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", apperr.Validation("title exceeds maximum length of 200 characters")
	}
	return title, nil
}

func validateDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return "", apperr.Validation("description is required")
	}
	return description, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
