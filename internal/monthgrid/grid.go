// Package monthgrid computes the Monday-first month view: the grid of day
// cells, the window to fetch, per-day buckets and the selection state.
package monthgrid

import (
	"fmt"
	"time"
)

// MonthLayout is the "YYYY-MM" form used in query strings.
const MonthLayout = "2006-01"

// DayLayout is the local date key of a bucket.
const DayLayout = "2006-01-02"

// Weekdays are the column headers, Monday first.
var Weekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Month is a calendar month viewed in a location.
type Month struct {
	year  int
	month time.Month
	loc   *time.Location
}

// New returns the month containing cursor in loc.
func New(cursor time.Time, loc *time.Location) Month {
	if loc == nil {
		loc = time.UTC
	}
	y, m, _ := cursor.In(loc).Date()
	return Month{year: y, month: m, loc: loc}
}

// Parse reads a "YYYY-MM" month.
func Parse(raw string, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(MonthLayout, raw, loc)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q", raw)
	}
	return New(t, loc), nil
}

// String renders the month as "YYYY-MM".
func (m Month) String() string {
	return m.First().Format(MonthLayout)
}

// Year returns the month's year.
func (m Month) Year() int { return m.year }

// Month returns the month of the year.
func (m Month) Month() time.Month { return m.month }

// Location returns the location the month is viewed in.
func (m Month) Location() *time.Location { return m.loc }

// First returns midnight of day 1.
func (m Month) First() time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, m.loc)
}

// Last returns midnight of the last day.
func (m Month) Last() time.Time {
	return time.Date(m.year, m.month+1, 0, 0, 0, 0, 0, m.loc)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.Last().Day()
}

// Prev returns the previous month.
func (m Month) Prev() Month {
	return New(time.Date(m.year, m.month-1, 1, 0, 0, 0, 0, m.loc), m.loc)
}

// Next returns the following month.
func (m Month) Next() Month {
	return New(time.Date(m.year, m.month+1, 1, 0, 0, 0, 0, m.loc), m.loc)
}

// Today returns the month containing now.
func (m Month) Today(now time.Time) Month {
	return New(now, m.loc)
}

// mondayIndex maps a weekday to its column, Monday = 0.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func (m Month) leading() int {
	return mondayIndex(m.First().Weekday())
}

func (m Month) trailing() int {
	return 6 - mondayIndex(m.Last().Weekday())
}

// Cells returns the grid of complete weeks. Cells outside the month are nil.
func (m Month) Cells() []*time.Time {
	lead, days, trail := m.leading(), m.Days(), m.trailing()
	cells := make([]*time.Time, 0, lead+days+trail)
	for i := 0; i < lead; i++ {
		cells = append(cells, nil)
	}
	for d := 1; d <= days; d++ {
		day := time.Date(m.year, m.month, d, 0, 0, 0, 0, m.loc)
		cells = append(cells, &day)
	}
	for i := 0; i < trail; i++ {
		cells = append(cells, nil)
	}
	return cells
}

// Weeks returns Cells split into rows of seven.
func (m Month) Weeks() [][]*time.Time {
	cells := m.Cells()
	weeks := make([][]*time.Time, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// GridStart returns the Monday on or before day 1.
func (m Month) GridStart() time.Time {
	return m.First().AddDate(0, 0, -m.leading())
}

// GridEnd returns the Sunday on or after the last day.
func (m Month) GridEnd() time.Time {
	return m.Last().AddDate(0, 0, m.trailing())
}

// FetchWindow spans every grid position, overflow days included: from
// GridStart at 00:00:00.000 to GridEnd at 23:59:59.999.
func (m Month) FetchWindow() (from, to time.Time) {
	end := m.GridEnd()
	y, mo, d := end.Date()
	return m.GridStart(), time.Date(y, mo, d, 23, 59, 59, int(999*time.Millisecond), m.loc)
}

// DayKey returns the bucket key of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}
