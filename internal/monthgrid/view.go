package monthgrid

import (
	"time"

	"github.com/p-blackswan/studyhub/internal/calendar"
)

// PreviewSize is the number of items shown inside a grid cell.
const PreviewSize = 2

// Cell is a rendered day of the grid.
type Cell struct {
	Date    string          `json:"date"`
	Today   bool            `json:"today"`
	Count   int             `json:"count"`
	Preview []calendar.Item `json:"preview"`
	More    int             `json:"more"`
}

// Default wall-clock times offered when creating an event on a day.
const (
	DraftStart = "10:00"
	DraftEnd   = "11:00"
)

// DayEntry carries the per-item actions of the selected day.
type DayEntry struct {
	Key     string `json:"key"`
	Path    string `json:"path"`
	Editing bool   `json:"editing"`
}

// Draft is the prefilled span of a new event on the selected day.
type Draft struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayView lists every item of the selected day. Entries is parallel to
// Items.
type DayView struct {
	Date    string          `json:"date"`
	Items   []calendar.Item `json:"items"`
	Entries []DayEntry      `json:"entries"`
	Draft   Draft           `json:"draft"`
}

// View is the month view. Blank grid positions are null.
type View struct {
	Month    string    `json:"month"`
	Prev     string    `json:"prev"`
	Next     string    `json:"next"`
	Current  string    `json:"current"`
	Weekdays []string  `json:"weekdays"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Weeks    [][]*Cell `json:"weeks"`
	Selected *DayView  `json:"selected,omitempty"`
	State    ViewState `json:"state"`
}

// BuildView buckets items into m's grid. Items on overflow days are
// dropped along with the blank cells.
func BuildView(m Month, items []calendar.Item, state ViewState, now time.Time) View {
	buckets := BucketByDay(items, m.Location())
	from, to := m.FetchWindow()
	todayKey := DayKey(now, m.Location())

	weekdays := make([]string, len(Weekdays))
	for i, d := range Weekdays {
		weekdays[i] = d.String()[:3]
	}

	v := View{
		Month:    m.String(),
		Prev:     m.Prev().String(),
		Next:     m.Next().String(),
		Current:  m.Today(now).String(),
		Weekdays: weekdays,
		From:     calendar.FormatInstant(from),
		To:       calendar.FormatInstant(to),
		State:    state,
	}

	for _, week := range m.Weeks() {
		row := make([]*Cell, len(week))
		for i, day := range week {
			if day == nil {
				continue
			}
			key := day.Format(DayLayout)
			bucket := buckets.Key(key)
			preview := bucket
			if len(preview) > PreviewSize {
				preview = preview[:PreviewSize]
			}
			if preview == nil {
				preview = []calendar.Item{}
			}
			row[i] = &Cell{
				Date:    key,
				Today:   key == todayKey,
				Count:   len(bucket),
				Preview: preview,
				More:    len(bucket) - len(preview),
			}
		}
		v.Weeks = append(v.Weeks, row)
	}

	if state.SelectedDay != nil {
		v.Selected = buildDayView(*state.SelectedDay, state, buckets, m.Location())
	}
	return v
}

func buildDayView(day time.Time, state ViewState, buckets Buckets, loc *time.Location) *DayView {
	items := state.Visible(buckets)
	if items == nil {
		items = []calendar.Item{}
	}
	entries := make([]DayEntry, len(items))
	for i, item := range items {
		entries[i] = DayEntry{
			Key:     calendar.Key(item),
			Path:    MutationPath(item),
			Editing: state.IsEditing(item),
		}
	}
	draft := SpanForDay(day.In(loc), false, DraftStart, DraftEnd)
	return &DayView{
		Date:    DayKey(day, loc),
		Items:   items,
		Entries: entries,
		Draft: Draft{
			Start: calendar.FormatInstant(draft.Start),
			End:   calendar.FormatInstant(draft.End),
		},
	}
}
