package monthgrid

import (
	"strconv"
	"strings"
	"time"

	"github.com/p-blackswan/studyhub/internal/calendar"
)

// SpanForDay builds the span of an event created on day. All-day events
// cover 00:00:00.000 to 23:59:59.999; otherwise the "HH:MM" times are
// applied to day, unparsable parts counting as zero. An end that does not
// follow the start becomes start plus one hour.
func SpanForDay(day time.Time, allDay bool, startHHMM, endHHMM string) calendar.Span {
	loc := day.Location()
	y, m, d := day.Date()

	var span calendar.Span
	if allDay {
		span = calendar.DaySpan(day, loc)
	} else {
		sh, sm := parseHHMM(startHHMM)
		eh, em := parseHHMM(endHHMM)
		span = calendar.Span{
			Start: time.Date(y, m, d, sh, sm, 0, 0, loc),
			End:   time.Date(y, m, d, eh, em, 0, 0, loc),
		}
	}

	if !span.End.After(span.Start) {
		span.End = span.Start.Add(calendar.DefaultDuration)
	}
	return span
}

func parseHHMM(raw string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	h, _ := strconv.Atoi(parts[0])
	var m int
	if len(parts) == 2 {
		m, _ = strconv.Atoi(parts[1])
	}
	return h, m
}

// MutationPath returns the API path that edits or deletes item. Events with
// a project go through the project route even on the dashboard.
func MutationPath(item calendar.Item) string {
	c := item.Base()
	switch item.(type) {
	case *calendar.TaskItem:
		return "/api/tasks/" + c.ID
	case *calendar.EventItem:
		if c.Project != nil && c.Project.ID != "" {
			return "/api/projects/" + c.Project.ID + "/events/" + c.ID
		}
	}
	return "/api/events/" + c.ID
}
