package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/studyhub/internal/apperr"
	"github.com/p-blackswan/studyhub/internal/store"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return v
}

func ptr(t time.Time) *time.Time { return &t }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func march(t *testing.T) store.Window {
	return store.Window{
		From: ptr(mustTime(t, "2024-03-01T00:00:00Z")),
		To:   ptr(mustTime(t, "2024-03-31T23:59:59.999Z")),
	}
}

func TestItems_RequiresUser(t *testing.T) {
	agg := NewAggregator(StoreSources(newTestStore(t)), time.UTC, zerolog.Nop())

	_, err := agg.Items(context.Background(), Query{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestItems_PersonalEventRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePersonalEvent(ctx, &store.PersonalEvent{
		OwnerID: "u1",
		Title:   "Study session",
		Start:   mustTime(t, "2024-03-07T10:00:00Z"),
		End:     mustTime(t, "2024-03-07T11:00:00Z"),
	}))

	agg := NewAggregator(StoreSources(s), time.UTC, zerolog.Nop())
	items, err := agg.Items(ctx, Query{UserID: "u1", Window: march(t)})
	require.NoError(t, err)
	require.Len(t, items, 1)

	ev, ok := items[0].(*EventItem)
	require.True(t, ok)
	assert.Equal(t, KindEvent, ev.Kind())
	assert.True(t, ev.Personal)
	assert.Equal(t, "Study session", ev.Title)
	assert.True(t, ev.Start.Equal(mustTime(t, "2024-03-07T10:00:00Z")))
	assert.True(t, ev.End.Equal(mustTime(t, "2024-03-07T11:00:00Z")))
	assert.Equal(t, ColorPersonal, ev.Color)
	assert.Nil(t, ev.Project)

	other, err := agg.Items(ctx, Query{UserID: "u2", Window: march(t)})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestItems_TaskDeadlineScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, store.NewProject{Name: "Capstone", OwnerID: "owner"})
	require.NoError(t, err)
	require.NoError(t, s.AddMember(ctx, p.ID, "member"))
	require.NoError(t, s.CreateTask(ctx, &store.Task{
		ProjectID: p.ID,
		Title:     "Draft report",
		Status:    store.TaskDoing,
		CreatedBy: "owner",
		Deadline:  ptr(mustTime(t, "2024-03-15T00:00:00Z")),
	}))

	agg := NewAggregator(StoreSources(s), time.UTC, zerolog.Nop())
	items, err := agg.Items(ctx, Query{UserID: "member", Window: march(t)})
	require.NoError(t, err)
	require.Len(t, items, 1)

	task, ok := items[0].(*TaskItem)
	require.True(t, ok)
	assert.Equal(t, KindTask, task.Kind())
	assert.Equal(t, "Draft report", task.Title)
	assert.Equal(t, "doing", task.Status)
	assert.Equal(t, ColorWarning, task.Color)
	assert.True(t, task.AllDay)
	assert.Equal(t, "2024-03-15T00:00:00.000Z", FormatInstant(task.Start))
	assert.Equal(t, "2024-03-15T23:59:59.999Z", FormatInstant(task.End))
	assert.Equal(t, 24*time.Hour-time.Millisecond, task.End.Sub(task.Start))
	require.NotNil(t, task.Project)
	assert.Equal(t, p.ID, task.Project.ID)
	assert.Equal(t, "Capstone", task.Project.Name)
}

func TestItems_ForeignProjectIsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, store.NewProject{Name: "Private", OwnerID: "owner"})
	require.NoError(t, err)
	require.NoError(t, s.CreateProjectEvent(ctx, &store.ProjectEvent{
		ProjectID: p.ID, Title: "Secret", CreatedBy: "owner",
		Start: mustTime(t, "2024-03-10T10:00:00Z"), End: mustTime(t, "2024-03-10T11:00:00Z"),
	}))

	agg := NewAggregator(StoreSources(s), time.UTC, zerolog.Nop())
	for _, projectID := range []string{p.ID, "not-a-project", ""} {
		items, err := agg.Items(ctx, Query{UserID: "stranger", ProjectID: projectID, Window: march(t)})
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items, "project %q", projectID)
	}
}

func TestItems_ProjectScopeExcludesPersonal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, store.NewProject{Name: "Lab", OwnerID: "u1"})
	require.NoError(t, err)
	other, err := s.CreateProject(ctx, store.NewProject{Name: "Other", OwnerID: "u1"})
	require.NoError(t, err)

	require.NoError(t, s.CreatePersonalEvent(ctx, &store.PersonalEvent{
		OwnerID: "u1", Title: "Gym",
		Start: mustTime(t, "2024-03-10T07:00:00Z"), End: mustTime(t, "2024-03-10T08:00:00Z"),
	}))
	require.NoError(t, s.CreateProjectEvent(ctx, &store.ProjectEvent{
		ProjectID: p.ID, Title: "Lab meeting", CreatedBy: "u1",
		Start: mustTime(t, "2024-03-11T10:00:00Z"), End: mustTime(t, "2024-03-11T11:00:00Z"),
	}))
	require.NoError(t, s.CreateProjectEvent(ctx, &store.ProjectEvent{
		ProjectID: other.ID, Title: "Other meeting", CreatedBy: "u1",
		Start: mustTime(t, "2024-03-12T10:00:00Z"), End: mustTime(t, "2024-03-12T11:00:00Z"),
	}))
	require.NoError(t, s.CreateTask(ctx, &store.Task{
		ProjectID: p.ID, Title: "Submit", Status: store.TaskDone, CreatedBy: "u1",
		Deadline: ptr(mustTime(t, "2024-03-20T17:00:00Z")),
	}))

	agg := NewAggregator(StoreSources(s), time.UTC, zerolog.Nop())

	scoped, err := agg.Items(ctx, Query{UserID: "u1", ProjectID: p.ID, Window: march(t)})
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, "Lab meeting", scoped[0].Base().Title)
	assert.Equal(t, ColorProject, scoped[0].Base().Color)
	assert.Equal(t, "Lab", scoped[0].Base().Project.Name)
	assert.Equal(t, "Submit", scoped[1].Base().Title)
	assert.Equal(t, ColorDone, scoped[1].Base().Color)

	dashboard, err := agg.Items(ctx, Query{UserID: "u1", Window: march(t)})
	require.NoError(t, err)
	require.Len(t, dashboard, 4)
	// personal first, then project events, then tasks
	assert.Equal(t, "Gym", dashboard[0].Base().Title)
	assert.Equal(t, KindEvent, dashboard[1].Kind())
	assert.Equal(t, KindEvent, dashboard[2].Kind())
	assert.Equal(t, KindTask, dashboard[3].Kind())
}

func TestItems_VacuousWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, store.NewProject{Name: "Lab", OwnerID: "u1"})
	require.NoError(t, err)
	require.NoError(t, s.CreateProjectEvent(ctx, &store.ProjectEvent{
		ProjectID: p.ID, Title: "x", CreatedBy: "u1",
		Start: mustTime(t, "2024-03-11T10:00:00Z"), End: mustTime(t, "2024-03-11T11:00:00Z"),
	}))

	agg := NewAggregator(StoreSources(s), time.UTC, zerolog.Nop())
	items, err := agg.Items(ctx, Query{
		UserID: "u1",
		Window: store.Window{
			From: ptr(mustTime(t, "2024-03-31T00:00:00Z")),
			To:   ptr(mustTime(t, "2024-03-01T00:00:00Z")),
		},
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItems_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, store.NewProject{Name: "Lab", OwnerID: "u1"})
	require.NoError(t, err)
	require.NoError(t, s.CreatePersonalEvent(ctx, &store.PersonalEvent{
		OwnerID: "u1", Title: "a",
		Start: mustTime(t, "2024-03-02T10:00:00Z"), End: mustTime(t, "2024-03-02T11:00:00Z"),
	}))
	require.NoError(t, s.CreateTask(ctx, &store.Task{
		ProjectID: p.ID, Title: "b", CreatedBy: "u1",
		Deadline: ptr(mustTime(t, "2024-03-03T00:00:00Z")),
	}))

	agg := NewAggregator(StoreSources(s), time.UTC, zerolog.Nop())
	q := Query{UserID: "u1", Window: march(t)}

	first, err := agg.Items(ctx, q)
	require.NoError(t, err)
	second, err := agg.Items(ctx, q)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

type failingDeadlines struct{}

func (failingDeadlines) ListDeadlines(context.Context, []string, store.Window) ([]*store.Task, error) {
	return nil, errors.New("disk on fire")
}

func TestItems_StorageErrorSurfaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateProject(ctx, store.NewProject{Name: "Lab", OwnerID: "u1"})
	require.NoError(t, err)

	src := StoreSources(s)
	src.Deadlines = failingDeadlines{}
	agg := NewAggregator(src, time.UTC, zerolog.Nop())

	_, err = agg.Items(ctx, Query{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestFromTask_LocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	task := &store.Task{
		ID: "t1", ProjectID: "p1", Title: "Due", Status: store.TaskTodo,
		// 03:30 UTC is still the previous evening in New York
		Deadline: ptr(mustTime(t, "2024-03-15T03:30:00Z")),
	}
	item := FromTask(task, "P", loc)

	localStart := item.Start.In(loc)
	assert.Equal(t, 14, localStart.Day())
	assert.Equal(t, 0, localStart.Hour())
	assert.Equal(t, 0, localStart.Minute())
	assert.Equal(t, 24*time.Hour-time.Millisecond, item.End.Sub(item.Start))
	assert.Equal(t, ColorAlert, item.Color)
}

func TestTaskColor(t *testing.T) {
	assert.Equal(t, ColorDone, TaskColor("done", ""))
	assert.Equal(t, ColorWarning, TaskColor("doing", ""))
	assert.Equal(t, ColorAlert, TaskColor("todo", ""))
	assert.Equal(t, ColorAlert, TaskColor("whatever", ""))
	assert.Equal(t, "#123456", TaskColor("done", "#123456"))
}

func TestItem_MarshalJSON(t *testing.T) {
	task := &TaskItem{
		Common: Common{
			ID:      "t1",
			Title:   "Due",
			Start:   mustTime(t, "2024-03-15T00:00:00Z"),
			End:     mustTime(t, "2024-03-15T23:59:59.999Z"),
			AllDay:  true,
			Project: &ProjectRef{ID: "p1", Name: "Lab"},
			Color:   ColorWarning,
		},
		Status: "doing",
	}
	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"_id": "t1", "kind": "task", "title": "Due",
		"start": "2024-03-15T00:00:00.000Z", "end": "2024-03-15T23:59:59.999Z",
		"allDay": true, "project": {"_id": "p1", "name": "Lab"},
		"status": "doing", "color": "#f59e0b"
	}`, string(out))

	ev := &EventItem{Common: Common{
		ID: "e1", Title: "Gym",
		Start: mustTime(t, "2024-03-15T07:00:00Z"), End: mustTime(t, "2024-03-15T08:00:00Z"),
		Color: ColorPersonal,
	}, Personal: true}
	out, err = json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"_id": "e1", "kind": "event", "title": "Gym",
		"start": "2024-03-15T07:00:00.000Z", "end": "2024-03-15T08:00:00.000Z",
		"allDay": false, "color": "#2563eb"
	}`, string(out))

	assert.Equal(t, "task-t1", Key(task))
	assert.Equal(t, "event-e1", Key(ev))
}
