package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeLength   = 6
	joinCodeAttempts = 5
)

// NewProject holds the parameters for creating a project.
type NewProject struct {
	Name        string
	Description string
	Color       string
	OwnerID     string
}

// projectColumns is the standard column list for project queries.
const projectColumns = `id, name, description, color, owner_id, join_code, created_at, updated_at`

// accessibleClause matches projects owned by, or shared with, a user.
const accessibleClause = `(owner_id = ? OR EXISTS (
	SELECT 1 FROM project_members m WHERE m.project_id = projects.id AND m.user_id = ?))`

// GenerateJoinCode returns a random invite code such as "K3F9ZQ".
func GenerateJoinCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := 0; i < joinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		b.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// CreateProject creates a project owned by input.OwnerID, who also becomes
// its first member.
func (s *Store) CreateProject(ctx context.Context, input NewProject) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	color := input.Color
	if color == "" {
		color = DefaultProjectColor
	}
	now := s.nowMillis()
	p := &Project{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Color:       color,
		OwnerID:     input.OwnerID,
		Members:     []string{input.OwnerID},
		CreatedAt:   fromMillis(now),
		UpdatedAt:   fromMillis(now),
	}

	var err error
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		p.JoinCode, err = GenerateJoinCode()
		if err != nil {
			return nil, err
		}
		_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.Description, p.Color, p.OwnerID, p.JoinCode, now, now)
		if err == nil {
			break
		}
		if !strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("failed to create project: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to allocate join code: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id, joined_at) VALUES (?, ?, ?)`,
		p.ID, p.OwnerID, now,
	); err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	s.logger.Debug().Str("project_id", p.ID).Str("owner_id", p.OwnerID).Msg("project created")
	return p, nil
}

// GetProject retrieves a project by ID. Returns nil when it does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
}

// GetProjectByJoinCode retrieves a project by its invite code.
func (s *Store) GetProjectByJoinCode(ctx context.Context, code string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE join_code = ?`,
		strings.ToUpper(strings.TrimSpace(code)))
}

// AccessibleProject returns the project only when userID owns it or is a
// member; nil otherwise, so callers cannot tell the two cases apart.
func (s *Store) AccessibleProject(ctx context.Context, projectID, userID string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanProject(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND `+accessibleClause,
		projectID, userID, userID)
}

// ListAccessibleProjects lists every project userID owns or belongs to,
// most recently updated first.
func (s *Store) ListAccessibleProjects(ctx context.Context, userID string) ([]*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE `+accessibleClause+` ORDER BY updated_at DESC`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var projects []*Project
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	rows.Close()

	if err := s.attachMembers(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember adds userID to the project. Adding an existing member is a no-op.
func (s *Store) AddMember(ctx context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowMillis()
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO project_members (project_id, user_id, joined_at) VALUES (?, ?, ?)`,
		projectID, userID, now,
	); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return s.touchProject(ctx, projectID, now)
}

// RemoveMember removes userID from the project's member list.
func (s *Store) RemoveMember(ctx context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("member not found: %s", userID)
	}
	return s.touchProject(ctx, projectID, s.nowMillis())
}

func (s *Store) touchProject(ctx context.Context, projectID string, now int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, now, projectID); err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProjectRow(row rowScanner) (*Project, error) {
	p := &Project{}
	var createdAt, updatedAt int64
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.OwnerID, &p.JoinCode, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func (s *Store) scanProject(ctx context.Context, query string, args ...interface{}) (*Project, error) {
	p, err := scanProjectRow(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err := s.attachMembers(ctx, []*Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// attachMembers loads member lists in one query. It must run after any
// result set on the single connection has been closed.
func (s *Store) attachMembers(ctx context.Context, projects []*Project) error {
	if len(projects) == 0 {
		return nil
	}
	byID := make(map[string]*Project, len(projects))
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
		ids = append(ids, p.ID)
		p.Members = []string{}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, user_id FROM project_members WHERE project_id IN (`+placeholders(len(ids))+`) ORDER BY joined_at, user_id`,
		stringArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, userID string
		if err := rows.Scan(&projectID, &userID); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		if p, ok := byID[projectID]; ok {
			p.Members = append(p.Members, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating members: %w", err)
	}
	return nil
}

// ProjectNames maps project IDs to names.
func ProjectNames(projects []*Project) map[string]string {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names
}

// ProjectIDs returns the IDs of projects in a stable order.
func ProjectIDs(projects []*Project) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids
}
