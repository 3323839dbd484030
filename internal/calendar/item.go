// Package calendar merges personal events, project events and task
// deadlines into one list of calendar items.
package calendar

import (
	"encoding/json"
	"time"
)

// Kind discriminates calendar item variants.
type Kind string

const (
	KindEvent Kind = "event"
	KindTask  Kind = "task"
)

// InstantLayout is the wire format of item instants: UTC with milliseconds.
const InstantLayout = "2006-01-02T15:04:05.000Z"

// FormatInstant renders t in InstantLayout.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// ProjectRef names the project an item belongs to.
type ProjectRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Common holds the fields shared by every item variant.
type Common struct {
	ID      string
	Title   string
	Start   time.Time
	End     time.Time
	AllDay  bool
	Project *ProjectRef
	Color   string
}

// Item is a calendar entry. The only implementations are EventItem and
// TaskItem.
type Item interface {
	Kind() Kind
	Base() *Common
	isItem()
}

// EventItem is a personal or project event.
type EventItem struct {
	Common
	Personal bool
}

// TaskItem is a task deadline expanded to a full day.
type TaskItem struct {
	Common
	Status string
}

func (*EventItem) Kind() Kind { return KindEvent }
func (*TaskItem) Kind() Kind  { return KindTask }

func (e *EventItem) Base() *Common { return &e.Common }
func (t *TaskItem) Base() *Common  { return &t.Common }

func (*EventItem) isItem() {}
func (*TaskItem) isItem()  {}

// Key identifies an item across kinds, e.g. "task-42".
func Key(item Item) string {
	return string(item.Kind()) + "-" + item.Base().ID
}

type wireItem struct {
	ID      string      `json:"_id"`
	Kind    Kind        `json:"kind"`
	Title   string      `json:"title"`
	Start   string      `json:"start"`
	End     string      `json:"end"`
	AllDay  bool        `json:"allDay"`
	Project *ProjectRef `json:"project,omitempty"`
	Status  string      `json:"status,omitempty"`
	Color   string      `json:"color,omitempty"`
}

func toWire(c *Common, kind Kind) wireItem {
	return wireItem{
		ID:      c.ID,
		Kind:    kind,
		Title:   c.Title,
		Start:   FormatInstant(c.Start),
		End:     FormatInstant(c.End),
		AllDay:  c.AllDay,
		Project: c.Project,
		Color:   c.Color,
	}
}

// MarshalJSON renders the event in the calendar wire shape.
func (e *EventItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(&e.Common, KindEvent))
}

// MarshalJSON renders the task in the calendar wire shape.
func (t *TaskItem) MarshalJSON() ([]byte, error) {
	w := toWire(&t.Common, KindTask)
	w.Status = t.Status
	return json.Marshal(w)
}
