// ABOUTME: Task store methods for the SQLite backend
// ABOUTME: Every read and write is a single statement scoped by id and owner

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const taskColumns = `id, owner_id, title, description, status, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateTask inserts a new task. ID, timestamps, and status are defaulted when empty.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = task.CreatedAt
	if task.Status == "" {
		task.Status = TaskStatusPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, status, created_at, updated_at,
			title_fold, description_fold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.OwnerID, task.Title, task.Description, string(task.Status),
		formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
		foldText(task.Title), foldText(task.Description))
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	s.logger.Debug("created task", "id", task.ID, "owner_id", task.OwnerID)
	return nil
}

// GetTask retrieves a task by ID if it belongs to ownerID.
// Returns ErrNotFound if the task is missing or owned by someone else.
func (s *SQLiteStore) GetTask(ctx context.Context, ownerID, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`,
		id, ownerID)
	return scanTask(row)
}

// ListTasks returns one page of ownerID's tasks, newest first, together with
// the total number of tasks matching the filter.
func (s *SQLiteStore) ListTasks(ctx context.Context, ownerID string, filter TaskFilter) ([]*Task, int, error) {
	where := []string{"owner_id = ?"}
	args := []any{ownerID}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(foldText(filter.Search)) + "%"
		where = append(where, `(title_fold LIKE ? ESCAPE '\' OR description_fold LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	whereClause := strings.Join(where, " AND ")

	// Count and page from the same snapshot.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("beginning list transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting tasks: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	pageArgs := append(append([]any{}, args...), limit, offset)

	rows, err := tx.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+whereClause+
			` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTask applies patch to the task if it belongs to ownerID and returns
// the updated row. The ownership check and the write are one statement.
// Returns ErrNotFound if the task is missing or owned by someone else.
func (s *SQLiteStore) UpdateTask(ctx context.Context, ownerID, id string, patch TaskPatch) (*Task, error) {
	if patch.Empty() {
		return s.GetTask(ctx, ownerID, id)
	}

	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now().UTC())}
	if patch.Title != nil {
		sets = append(sets, "title = ?", "title_fold = ?")
		args = append(args, *patch.Title, foldText(*patch.Title))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?", "description_fold = ?")
		args = append(args, *patch.Description, foldText(*patch.Description))
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	args = append(args, id, ownerID)

	row := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+
			` WHERE id = ? AND owner_id = ? RETURNING `+taskColumns,
		args...)
	task, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("updated task", "id", id, "owner_id", ownerID)
	return task, nil
}

// DeleteTask permanently removes the task if it belongs to ownerID.
// Returns ErrNotFound if the task is missing or owned by someone else.
func (s *SQLiteStore) DeleteTask(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted task", "id", id, "owner_id", ownerID)
	return nil
}

// DeleteTasks removes every listed task that belongs to ownerID and returns
// how many were deleted. IDs that are missing or foreign are skipped.
func (s *SQLiteStore) DeleteTasks(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE owner_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting tasks: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	s.logger.Debug("deleted tasks", "owner_id", ownerID, "requested", len(ids), "deleted", n)
	return int(n), nil
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var status, createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Status = TaskStatus(status)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
