package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/studyhub/internal/apperr"
	"github.com/p-blackswan/studyhub/internal/store"
)

// ProjectLookup resolves which projects a user can see.
type ProjectLookup interface {
	AccessibleProject(ctx context.Context, projectID, userID string) (*store.Project, error)
	ListAccessibleProjects(ctx context.Context, userID string) ([]*store.Project, error)
}

// PersonalEvents reads a user's own events.
type PersonalEvents interface {
	ListPersonalEvents(ctx context.Context, ownerID string, w store.Window) ([]*store.PersonalEvent, error)
}

// ProjectEvents reads events shared within projects.
type ProjectEvents interface {
	ListProjectEvents(ctx context.Context, projectIDs []string, w store.Window) ([]*store.ProjectEvent, error)
}

// Deadlines reads tasks that carry a deadline.
type Deadlines interface {
	ListDeadlines(ctx context.Context, projectIDs []string, w store.Window) ([]*store.Task, error)
}

// Sources bundles the record stores the aggregator reads. *store.Store
// satisfies all of them.
type Sources struct {
	Projects       ProjectLookup
	PersonalEvents PersonalEvents
	ProjectEvents  ProjectEvents
	Deadlines      Deadlines
}

// StoreSources wires every source to one store.
func StoreSources(s *store.Store) Sources {
	return Sources{Projects: s, PersonalEvents: s, ProjectEvents: s, Deadlines: s}
}

// Query selects the items to aggregate. An empty ProjectID means the
// dashboard view across all of the user's projects plus personal events.
type Query struct {
	UserID    string
	Window    store.Window
	ProjectID string
}

// Aggregator assembles calendar items. It never writes.
type Aggregator struct {
	src    Sources
	loc    *time.Location
	logger zerolog.Logger
}

// NewAggregator creates an aggregator. Task deadlines are expanded to the
// calendar day they fall on in loc.
func NewAggregator(src Sources, loc *time.Location, logger zerolog.Logger) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		src:    src,
		loc:    loc,
		logger: logger.With().Str("component", "calendar").Logger(),
	}
}

// Location returns the calendar location.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Items returns personal events, then project events, then task deadlines
// visible to q.UserID. An inaccessible project scope yields no items and no
// error.
func (a *Aggregator) Items(ctx context.Context, q Query) ([]Item, error) {
	if q.UserID == "" {
		return nil, apperr.ErrUnauthorized
	}
	if q.Window.Vacuous() {
		return []Item{}, nil
	}

	projects, err := a.candidateProjects(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.ProjectID != "" && len(projects) == 0 {
		a.logger.Debug().Str("user_id", q.UserID).Str("project_id", q.ProjectID).Msg("project scope not accessible")
		return []Item{}, nil
	}

	names := store.ProjectNames(projects)
	ids := store.ProjectIDs(projects)

	var (
		wg            sync.WaitGroup
		personal      []*store.PersonalEvent
		projectEvents []*store.ProjectEvent
		deadlines     []*store.Task
		errs          [3]error
	)

	if q.ProjectID == "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			personal, errs[0] = a.src.PersonalEvents.ListPersonalEvents(ctx, q.UserID, q.Window)
		}()
	}
	if len(ids) > 0 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			projectEvents, errs[1] = a.src.ProjectEvents.ListProjectEvents(ctx, ids, q.Window)
		}()
		go func() {
			defer wg.Done()
			deadlines, errs[2] = a.src.Deadlines.ListDeadlines(ctx, ids, q.Window)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("calendar: %w", err)
		}
	}

	items := make([]Item, 0, len(personal)+len(projectEvents)+len(deadlines))
	for _, e := range personal {
		items = append(items, FromPersonalEvent(e))
	}
	for _, e := range projectEvents {
		items = append(items, FromProjectEvent(e, names[e.ProjectID]))
	}
	for _, t := range deadlines {
		items = append(items, FromTask(t, names[t.ProjectID], a.loc))
	}

	a.logger.Debug().
		Str("user_id", q.UserID).
		Str("project_id", q.ProjectID).
		Int("personal", len(personal)).
		Int("project_events", len(projectEvents)).
		Int("tasks", len(deadlines)).
		Msg("calendar assembled")

	return items, nil
}

func (a *Aggregator) candidateProjects(ctx context.Context, q Query) ([]*store.Project, error) {
	if q.ProjectID != "" {
		p, err := a.src.Projects.AccessibleProject(ctx, q.ProjectID, q.UserID)
		if err != nil {
			return nil, fmt.Errorf("calendar: %w", err)
		}
		if p == nil {
			return nil, nil
		}
		return []*store.Project{p}, nil
	}
	projects, err := a.src.Projects.ListAccessibleProjects(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	return projects, nil
}

// FromPersonalEvent normalizes a personal event.
func FromPersonalEvent(e *store.PersonalEvent) *EventItem {
	return &EventItem{
		Common: Common{
			ID:     e.ID,
			Title:  e.Title,
			Start:  e.Start.UTC(),
			End:    e.End.UTC(),
			AllDay: e.AllDay,
			Color:  personalColor(e.Color),
		},
		Personal: true,
	}
}

// FromProjectEvent normalizes a project event.
func FromProjectEvent(e *store.ProjectEvent, projectName string) *EventItem {
	return &EventItem{
		Common: Common{
			ID:      e.ID,
			Title:   e.Title,
			Start:   e.Start.UTC(),
			End:     e.End.UTC(),
			AllDay:  e.AllDay,
			Project: &ProjectRef{ID: e.ProjectID, Name: projectName},
			Color:   ColorProject,
		},
	}
}

// FromTask expands a task deadline into an all-day item. The task must have
// a deadline.
func FromTask(t *store.Task, projectName string, loc *time.Location) *TaskItem {
	span := DaySpan(*t.Deadline, loc)
	return &TaskItem{
		Common: Common{
			ID:      t.ID,
			Title:   t.Title,
			Start:   span.Start.UTC(),
			End:     span.End.UTC(),
			AllDay:  true,
			Project: &ProjectRef{ID: t.ProjectID, Name: projectName},
			Color:   TaskColor(string(t.Status), ""),
		},
		Status: string(t.Status),
	}
}
