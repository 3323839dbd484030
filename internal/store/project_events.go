package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const projectEventColumns = `id, project_id, title, description, start_at, end_at, all_day, created_by, created_at, updated_at`

// CreateProjectEvent inserts e, assigning its ID and timestamps.
func (s *Store) CreateProjectEvent(ctx context.Context, e *ProjectEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := s.nowMillis()
	e.CreatedAt = fromMillis(now)
	e.UpdatedAt = fromMillis(now)

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO project_events (`+projectEventColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.ProjectID, e.Title, e.Description,
		toMillis(e.Start), toMillis(e.End), boolInt(e.AllDay), e.CreatedBy, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create project event: %w", err)
	}
	return nil
}

// GetProjectEvent retrieves an event of projectID. An event that exists
// under a different project is reported as missing.
func (s *Store) GetProjectEvent(ctx context.Context, projectID, id string) (*ProjectEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := scanProjectEvent(s.db.QueryRowContext(ctx,
		`SELECT `+projectEventColumns+` FROM project_events WHERE id = ? AND project_id = ?`, id, projectID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project event: %w", err)
	}
	return e, nil
}

// UpdateProjectEvent writes every mutable field of e.
func (s *Store) UpdateProjectEvent(ctx context.Context, e *ProjectEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowMillis()
	res, err := s.db.ExecContext(ctx, `
	UPDATE project_events
	SET title = ?, description = ?, start_at = ?, end_at = ?, all_day = ?, updated_at = ?
	WHERE id = ? AND project_id = ?
	`,
		e.Title, e.Description, toMillis(e.Start), toMillis(e.End), boolInt(e.AllDay), now, e.ID, e.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("project event not found: %s", e.ID)
	}
	e.UpdatedAt = fromMillis(now)
	return nil
}

// DeleteProjectEvent removes an event of projectID.
func (s *Store) DeleteProjectEvent(ctx context.Context, projectID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM project_events WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("project event not found: %s", id)
	}
	return nil
}

// ListProjectEvents returns events of the given projects overlapping w,
// ordered by start.
func (s *Store) ListProjectEvents(ctx context.Context, projectIDs []string, w Window) ([]*ProjectEvent, error) {
	if len(projectIDs) == 0 || w.Vacuous() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"project_id IN (" + placeholders(len(projectIDs)) + ")"}
	args := stringArgs(projectIDs)
	where, args = w.overlap(where, args)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectEventColumns+` FROM project_events WHERE `+strings.Join(where, " AND ")+` ORDER BY start_at, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list project events: %w", err)
	}
	defer rows.Close()

	var events []*ProjectEvent
	for rows.Next() {
		e, err := scanProjectEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project events: %w", err)
	}
	return events, nil
}

func scanProjectEvent(row rowScanner) (*ProjectEvent, error) {
	e := &ProjectEvent{}
	var start, end, createdAt, updatedAt int64
	var allDay int

	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Title, &e.Description,
		&start, &end, &allDay, &e.CreatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Start = fromMillis(start)
	e.End = fromMillis(end)
	e.AllDay = allDay != 0
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}
