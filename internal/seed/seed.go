// Package seed loads YAML fixtures into the store for demos and local
// development.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/p-blackswan/studyhub/internal/calendar"
	"github.com/p-blackswan/studyhub/internal/store"
)

// Fixture is the top-level document of a seed file.
type Fixture struct {
	Projects       []Project       `yaml:"projects"`
	PersonalEvents []PersonalEvent `yaml:"personal_events"`
}

// Project is a project with its members, tasks and shared events.
type Project struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Color       string         `yaml:"color"`
	Owner       string         `yaml:"owner"`
	Members     []string       `yaml:"members"`
	Tasks       []Task         `yaml:"tasks"`
	Events      []ProjectEvent `yaml:"events"`
}

// Task is a project task. Deadline is optional.
type Task struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Deadline    string `yaml:"deadline"`
	AssignedTo  string `yaml:"assigned_to"`
	CreatedBy   string `yaml:"created_by"`
}

// ProjectEvent is an event shared within a project.
type ProjectEvent struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	AllDay      bool   `yaml:"all_day"`
	CreatedBy   string `yaml:"created_by"`
}

// PersonalEvent is an event owned by one user.
type PersonalEvent struct {
	Owner       string `yaml:"owner"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	AllDay      bool   `yaml:"all_day"`
	Color       string `yaml:"color"`
}

// Summary counts the records created by Apply.
type Summary struct {
	Projects       int
	Tasks          int
	ProjectEvents  int
	PersonalEvents int
}

// Load reads and parses a seed file.
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a seed document. Unknown keys are rejected; an empty
// document yields an empty fixture.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// Seeder writes fixtures through the store so every record obeys the same
// invariants as API writes.
type Seeder struct {
	store  *store.Store
	loc    *time.Location
	logger zerolog.Logger
}

// New creates a Seeder. Times without an offset are read in loc.
func New(s *store.Store, loc *time.Location, logger zerolog.Logger) *Seeder {
	if loc == nil {
		loc = time.UTC
	}
	return &Seeder{
		store:  s,
		loc:    loc,
		logger: logger.With().Str("component", "seed").Logger(),
	}
}

// Apply creates every record of f. It stops at the first invalid record;
// records created before it are kept.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Summary, error) {
	var sum Summary

	for i, fp := range f.Projects {
		if strings.TrimSpace(fp.Name) == "" || fp.Owner == "" {
			return sum, fmt.Errorf("seed: project %d: name and owner are required", i)
		}
		p, err := s.store.CreateProject(ctx, store.NewProject{
			Name:        strings.TrimSpace(fp.Name),
			Description: fp.Description,
			Color:       fp.Color,
			OwnerID:     fp.Owner,
		})
		if err != nil {
			return sum, err
		}
		sum.Projects++

		for _, m := range fp.Members {
			if m == fp.Owner {
				continue
			}
			if err := s.store.AddMember(ctx, p.ID, m); err != nil {
				return sum, err
			}
			p.Members = append(p.Members, m)
		}

		for j, ft := range fp.Tasks {
			t, err := s.task(p, ft)
			if err != nil {
				return sum, fmt.Errorf("seed: project %q task %d: %w", fp.Name, j, err)
			}
			if err := s.store.CreateTask(ctx, t); err != nil {
				return sum, err
			}
			sum.Tasks++
		}

		for j, fe := range fp.Events {
			span, err := s.span(fe.Start, fe.End)
			if err != nil {
				return sum, fmt.Errorf("seed: project %q event %d: %w", fp.Name, j, err)
			}
			createdBy := fe.CreatedBy
			if createdBy == "" {
				createdBy = fp.Owner
			}
			e := &store.ProjectEvent{
				ProjectID:   p.ID,
				Title:       fe.Title,
				Description: fe.Description,
				Start:       span.Start,
				End:         span.End,
				AllDay:      fe.AllDay,
				CreatedBy:   createdBy,
			}
			if err := s.store.CreateProjectEvent(ctx, e); err != nil {
				return sum, err
			}
			sum.ProjectEvents++
		}

		s.logger.Info().
			Str("project_id", p.ID).
			Str("name", p.Name).
			Str("join_code", p.JoinCode).
			Msg("seeded project")
	}

	for i, fe := range f.PersonalEvents {
		if fe.Owner == "" || strings.TrimSpace(fe.Title) == "" {
			return sum, fmt.Errorf("seed: personal event %d: owner and title are required", i)
		}
		span, err := s.span(fe.Start, fe.End)
		if err != nil {
			return sum, fmt.Errorf("seed: personal event %d: %w", i, err)
		}
		e := &store.PersonalEvent{
			OwnerID:     fe.Owner,
			Title:       fe.Title,
			Description: fe.Description,
			Start:       span.Start,
			End:         span.End,
			AllDay:      fe.AllDay,
			Color:       fe.Color,
		}
		if err := s.store.CreatePersonalEvent(ctx, e); err != nil {
			return sum, err
		}
		sum.PersonalEvents++
	}

	return sum, nil
}

func (s *Seeder) task(p *store.Project, ft Task) (*store.Task, error) {
	if strings.TrimSpace(ft.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	status := store.TaskStatus(ft.Status)
	if status == "" {
		status = store.TaskTodo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", ft.Status)
	}
	if ft.AssignedTo != "" && !p.HasAccess(ft.AssignedTo) {
		return nil, fmt.Errorf("assignee %q is not a project member", ft.AssignedTo)
	}
	t := &store.Task{
		ProjectID:   p.ID,
		Title:       strings.TrimSpace(ft.Title),
		Description: ft.Description,
		Status:      status,
		AssignedTo:  ft.AssignedTo,
		CreatedBy:   ft.CreatedBy,
	}
	if t.CreatedBy == "" {
		t.CreatedBy = p.OwnerID
	}
	if ft.Deadline != "" {
		d, err := calendar.ParseInstant(ft.Deadline, s.loc)
		if err != nil {
			return nil, fmt.Errorf("invalid deadline %q", ft.Deadline)
		}
		t.Deadline = &d
	}
	return t, nil
}

func (s *Seeder) span(rawStart, rawEnd string) (calendar.Span, error) {
	start, err := calendar.ParseInstant(rawStart, s.loc)
	if err != nil {
		return calendar.Span{}, fmt.Errorf("invalid start %q", rawStart)
	}
	var end *time.Time
	if rawEnd != "" {
		e, err := calendar.ParseInstant(rawEnd, s.loc)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("invalid end %q", rawEnd)
		}
		end = &e
	}
	return calendar.NewSpan(start, end)
}
