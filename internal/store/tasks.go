package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const taskColumns = `id, project_id, title, description, status, created_by, assigned_to, deadline, created_at, updated_at`

// CreateTask inserts a task, assigning its ID and timestamps.
func (s *Store) CreateTask(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
	now := s.nowMillis()
	t.CreatedAt = fromMillis(now)
	t.UpdatedAt = fromMillis(now)

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO tasks (`+taskColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), t.CreatedBy,
		sql.NullString{String: t.AssignedTo, Valid: t.AssignedTo != ""},
		nullMillis(t.Deadline), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. Returns nil when it does not exist.
func (s *Store) GetTask(ctx context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask writes every mutable field of t and bumps updated_at.
func (s *Store) UpdateTask(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowMillis()
	res, err := s.db.ExecContext(ctx, `
	UPDATE tasks
	SET title = ?, description = ?, status = ?, assigned_to = ?, deadline = ?, updated_at = ?
	WHERE id = ?
	`,
		t.Title, t.Description, string(t.Status),
		sql.NullString{String: t.AssignedTo, Valid: t.AssignedTo != ""},
		nullMillis(t.Deadline), now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	t.UpdatedAt = fromMillis(now)
	return nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// ListProjectTasks lists a project's tasks, most recently updated first.
func (s *Store) ListProjectTasks(ctx context.Context, projectID string) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY updated_at DESC`, projectID)
}

// ListDeadlines returns tasks of the given projects whose deadline is set
// and falls inside w (inclusive on both ends), earliest first.
func (s *Store) ListDeadlines(ctx context.Context, projectIDs []string, w Window) ([]*Task, error) {
	if len(projectIDs) == 0 || w.Vacuous() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"project_id IN (" + placeholders(len(projectIDs)) + ")", "deadline IS NOT NULL"}
	args := stringArgs(projectIDs)
	where, args = w.contains("deadline", where, args)

	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+strings.Join(where, " AND ")+` ORDER BY deadline, id`,
		args...)
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var status string
	var assignedTo sql.NullString
	var deadline sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.CreatedBy,
		&assignedTo, &deadline, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = TaskStatus(status)
	if assignedTo.Valid {
		t.AssignedTo = assignedTo.String
	}
	if deadline.Valid {
		d := fromMillis(deadline.Int64)
		t.Deadline = &d
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}
