package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const personalEventColumns = `id, owner_id, title, description, start_at, end_at, all_day, color, created_at, updated_at`

// CreatePersonalEvent inserts e, assigning its ID and timestamps.
func (s *Store) CreatePersonalEvent(ctx context.Context, e *PersonalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Color == "" {
		e.Color = DefaultPersonalColor
	}
	now := s.nowMillis()
	e.CreatedAt = fromMillis(now)
	e.UpdatedAt = fromMillis(now)

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO personal_events (`+personalEventColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.OwnerID, e.Title, e.Description,
		toMillis(e.Start), toMillis(e.End), boolInt(e.AllDay), e.Color, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create personal event: %w", err)
	}
	return nil
}

// GetPersonalEvent retrieves a personal event by ID. Returns nil when it
// does not exist.
func (s *Store) GetPersonalEvent(ctx context.Context, id string) (*PersonalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := scanPersonalEvent(s.db.QueryRowContext(ctx,
		`SELECT `+personalEventColumns+` FROM personal_events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personal event: %w", err)
	}
	return e, nil
}

// UpdatePersonalEvent writes every mutable field of e.
func (s *Store) UpdatePersonalEvent(ctx context.Context, e *PersonalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowMillis()
	res, err := s.db.ExecContext(ctx, `
	UPDATE personal_events
	SET title = ?, description = ?, start_at = ?, end_at = ?, all_day = ?, color = ?, updated_at = ?
	WHERE id = ?
	`,
		e.Title, e.Description, toMillis(e.Start), toMillis(e.End), boolInt(e.AllDay), e.Color, now, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update personal event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("personal event not found: %s", e.ID)
	}
	e.UpdatedAt = fromMillis(now)
	return nil
}

// DeletePersonalEvent removes a personal event.
func (s *Store) DeletePersonalEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM personal_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete personal event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("personal event not found: %s", id)
	}
	return nil
}

// ListPersonalEvents returns ownerID's events overlapping w, ordered by start.
func (s *Store) ListPersonalEvents(ctx context.Context, ownerID string, w Window) ([]*PersonalEvent, error) {
	if w.Vacuous() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"owner_id = ?"}
	args := []interface{}{ownerID}
	where, args = w.overlap(where, args)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+personalEventColumns+` FROM personal_events WHERE `+strings.Join(where, " AND ")+` ORDER BY start_at, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal events: %w", err)
	}
	defer rows.Close()

	var events []*PersonalEvent
	for rows.Next() {
		e, err := scanPersonalEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan personal event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating personal events: %w", err)
	}
	return events, nil
}

func scanPersonalEvent(row rowScanner) (*PersonalEvent, error) {
	e := &PersonalEvent{}
	var start, end, createdAt, updatedAt int64
	var allDay int

	err := row.Scan(
		&e.ID, &e.OwnerID, &e.Title, &e.Description,
		&start, &end, &allDay, &e.Color, &createdAt, &updatedAt,
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
