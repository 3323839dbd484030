package monthgrid

import (
	"time"

	"github.com/p-blackswan/studyhub/internal/calendar"
)

// ViewState is the selection state of a month view: no day selected, a day
// selected, or a day selected with one of its items being edited.
type ViewState struct {
	SelectedDay    *time.Time `json:"selectedDay,omitempty"`
	EditingItemKey string     `json:"editingItemKey,omitempty"`
}

// Select selects day and leaves any edit. Selecting never re-fetches.
func (v ViewState) Select(day time.Time) ViewState {
	return ViewState{SelectedDay: &day}
}

// Clear returns the unselected state.
func (v ViewState) Clear() ViewState {
	return ViewState{}
}

// BeginEdit starts editing item. It is a no-op when no day is selected.
func (v ViewState) BeginEdit(item calendar.Item) ViewState {
	if v.SelectedDay == nil {
		return v
	}
	v.EditingItemKey = calendar.Key(item)
	return v
}

// CancelEdit leaves the editing sub-state, keeping the selection.
func (v ViewState) CancelEdit() ViewState {
	v.EditingItemKey = ""
	return v
}

// IsEditing reports whether item is the one being edited.
func (v ViewState) IsEditing(item calendar.Item) bool {
	return v.EditingItemKey != "" && v.EditingItemKey == calendar.Key(item)
}

// Visible returns the bucket of the selected day, or nil when none is
// selected.
func (v ViewState) Visible(b Buckets) []calendar.Item {
	if v.SelectedDay == nil {
		return nil
	}
	return b.Day(*v.SelectedDay)
}
