package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.CreateProject(ctx, NewProject{Name: "Lab", OwnerID: "u1"})
	require.NoError(t, err)

	task := &Task{ProjectID: p.ID, Title: "Write report", CreatedBy: "u1"}
	require.NoError(t, store.CreateTask(ctx, task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, TaskTodo, task.Status)

	got, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Write report", got.Title)
	assert.Nil(t, got.Deadline)
	assert.Empty(t, got.AssignedTo)

	got.Status = TaskDoing
	got.Deadline = tp("2024-03-15T12:00:00Z")
	got.AssignedTo = "u1"
	require.NoError(t, store.UpdateTask(ctx, got))

	updated, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskDoing, updated.Status)
	require.NotNil(t, updated.Deadline)
	assert.True(t, updated.Deadline.Equal(ts("2024-03-15T12:00:00Z")))
	assert.Equal(t, "u1", updated.AssignedTo)

	updated.Deadline = nil
	updated.AssignedTo = ""
	require.NoError(t, store.UpdateTask(ctx, updated))
	cleared, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Deadline)
	assert.Empty(t, cleared.AssignedTo)

	list, err := store.ListProjectTasks(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeleteTask(ctx, task.ID))
	assert.Error(t, store.DeleteTask(ctx, task.ID))

	gone, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestTask_InvalidStatusRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.CreateProject(ctx, NewProject{Name: "Lab", OwnerID: "u1"})
	require.NoError(t, err)

	err = store.CreateTask(ctx, &Task{ProjectID: p.ID, Title: "x", Status: "blocked", CreatedBy: "u1"})
	assert.Error(t, err)
}

func TestTask_ListDeadlines(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.CreateProject(ctx, NewProject{Name: "Lab", OwnerID: "u1"})
	require.NoError(t, err)
	other, err := store.CreateProject(ctx, NewProject{Name: "Other", OwnerID: "u2"})
	require.NoError(t, err)

	mk := func(projectID, title string, deadline string) {
		task := &Task{ProjectID: projectID, Title: title, CreatedBy: "u1"}
		if deadline != "" {
			task.Deadline = tp(deadline)
		}
		require.NoError(t, store.CreateTask(ctx, task))
	}
	mk(p.ID, "late", "2024-03-20T00:00:00Z")
	mk(p.ID, "early", "2024-03-05T00:00:00Z")
	mk(p.ID, "edge", "2024-03-31T23:59:59Z")
	mk(p.ID, "april", "2024-04-02T00:00:00Z")
	mk(p.ID, "undated", "")
	mk(other.ID, "foreign", "2024-03-10T00:00:00Z")

	march := Window{From: tp("2024-03-01T00:00:00Z"), To: tp("2024-03-31T23:59:59Z")}
	tasks, err := store.ListDeadlines(ctx, []string{p.ID}, march)
	require.NoError(t, err)
	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"early", "late", "edge"}, titles)

	all, err := store.ListDeadlines(ctx, []string{p.ID, other.ID}, Window{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	fromOnly, err := store.ListDeadlines(ctx, []string{p.ID}, Window{From: tp("2024-03-21T00:00:00Z")})
	require.NoError(t, err)
	assert.Len(t, fromOnly, 2)

	none, err := store.ListDeadlines(ctx, nil, march)
	require.NoError(t, err)
	assert.Empty(t, none)

	vacuous, err := store.ListDeadlines(ctx, []string{p.ID},
		Window{From: tp("2024-03-31T00:00:00Z"), To: tp("2024-03-01T00:00:00Z")})
	require.NoError(t, err)
	assert.Empty(t, vacuous)
}
