package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/p-blackswan/studyhub/internal/apperr"
	"github.com/p-blackswan/studyhub/internal/calendar"
	"github.com/p-blackswan/studyhub/internal/store"
)

// Optional is a PATCH field that distinguishes absent, null and a value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only invoked when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// --- Personal and project events ---

type createEventRequest struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Start       string  `json:"start"`
	End         *string `json:"end"`
	AllDay      bool    `json:"allDay"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
}

// span resolves the request's start and end. A missing end defaults to one
// hour after start.
func (r createEventRequest) span(loc *time.Location) (calendar.Span, error) {
	start, err := calendar.ParseInstant(r.Start, loc)
	if err != nil {
		return calendar.Span{}, apperr.Invalid("start", "Invalid start")
	}
	var end *time.Time
	if r.End != nil && strings.TrimSpace(*r.End) != "" {
		parsed, err := calendar.ParseInstant(*r.End, loc)
		if err != nil {
			return calendar.Span{}, apperr.Invalid("end", "Invalid end")
		}
		end = &parsed
	}
	return calendar.NewSpan(start, end)
}

type updateEventRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Start       Optional[string] `json:"start"`
	End         Optional[string] `json:"end"`
	AllDay      Optional[bool]   `json:"allDay"`
	Color       Optional[string] `json:"color"`
}

// apply edits title and description in place and returns the new span.
func (r updateEventRequest) apply(title, description *string, current calendar.Span, loc *time.Location) (calendar.Span, error) {
	if r.Title.Set {
		t := strings.TrimSpace(r.Title.Value)
		if r.Title.Null || t == "" {
			return calendar.Span{}, apperr.Invalid("title", "Title is required")
		}
		*title = t
	}
	if r.Description.Set {
		*description = strings.TrimSpace(r.Description.Value)
	}

	var newStart, newEnd *time.Time
	if r.Start.Set {
		parsed, err := calendar.ParseInstant(r.Start.Value, loc)
		if r.Start.Null || err != nil {
			return calendar.Span{}, apperr.Invalid("start", "Invalid start")
		}
		newStart = &parsed
	}
	if r.End.Set {
		parsed, err := calendar.ParseInstant(r.End.Value, loc)
		if r.End.Null || err != nil {
			return calendar.Span{}, apperr.Invalid("end", "Invalid end")
		}
		newEnd = &parsed
	}
	return calendar.ApplyTimeEdit(current, newStart, newEnd)
}

// --- Projects ---

type createProjectRequest struct {
	Name        string `json:"name" validate:"notblank,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type joinProjectRequest struct {
	JoinCode string `json:"joinCode"`
}

// --- Tasks ---

type createTaskRequest struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Status      string  `json:"status"`
	Deadline    *string `json:"deadline"`
	AssignedTo  string  `json:"assignedTo"`
}

type updateTaskRequest struct {
	Title       Optional[string]          `json:"title"`
	Description Optional[string]          `json:"description"`
	Status      Optional[string]          `json:"status"`
	Deadline    Optional[json.RawMessage] `json:"deadline"`
	AssignedTo  Optional[string]          `json:"assignedTo"`
}

// parseStatus defaults an empty status to todo.
func parseStatus(raw string) (store.TaskStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return store.TaskTodo, nil
	}
	status := store.TaskStatus(raw)
	if !status.Valid() {
		return "", apperr.Invalid("status", "Invalid status")
	}
	return status, nil
}

// parseDeadline treats null and "" as a cleared deadline. Anything other
// than a parseable string is rejected.
func parseDeadline(raw json.RawMessage, loc *time.Location) (*time.Time, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, apperr.Invalid("deadline", "Invalid deadline")
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := calendar.ParseInstant(s, loc)
	if err != nil {
		return nil, apperr.Invalid("deadline", "Invalid deadline")
	}
	return &t, nil
}

// dueTask is a task listed by /api/tasks/due with its project's name.
type dueTask struct {
	*store.Task
	ProjectName string `json:"projectName"`
}
