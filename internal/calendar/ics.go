package calendar

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
)

const (
	icsProductID = "-//studyhub//calendar//EN"
	icsUIDDomain = "@studyhub"
)

// WriteICS renders items as an iCalendar feed. All-day items are written as
// DATE values in loc with an exclusive end date.
func WriteICS(w io.Writer, name string, items []Item, loc *time.Location, stamp time.Time) error {
	if loc == nil {
		loc = time.UTC
	}
	cal := ical.NewCalendar()
	cal.SetProductId(icsProductID)
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, item := range items {
		c := item.Base()
		ev := cal.AddEvent(Key(item) + icsUIDDomain)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(c.Title)

		if c.AllDay {
			first, last := allDayDates(c.Start, c.End, loc)
			ev.SetAllDayStartAt(first)
			ev.SetAllDayEndAt(last)
		} else {
			ev.SetStartAt(c.Start)
			ev.SetEndAt(c.End)
		}

		ev.AddProperty(ical.ComponentPropertyCategories, string(item.Kind()))
		if c.Color != "" {
			ev.SetProperty(ical.ComponentPropertyColor, c.Color)
		}

		switch it := item.(type) {
		case *TaskItem:
			if c.Project != nil {
				ev.SetDescription(c.Project.Name + " (" + it.Status + ")")
			}
		case *EventItem:
			if c.Project != nil {
				ev.SetDescription(c.Project.Name)
			}
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// allDayDates returns the first day and the day after the last day covered
// by [start, end].
func allDayDates(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	first := DaySpan(start, loc).Start
	lastInstant := end
	if end.After(start) {
		lastInstant = end.Add(-time.Millisecond)
	}
	last := DaySpan(lastInstant, loc).Start
	return first, last.AddDate(0, 0, 1)
}
