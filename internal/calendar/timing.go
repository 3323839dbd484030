package calendar

import (
	"time"

	"github.com/p-blackswan/studyhub/internal/apperr"
)

// DefaultDuration is the length given to events created without an end,
// and the shortest duration kept when only the start moves.
const DefaultDuration = time.Hour

// Span is a half-open [Start, End) interval.
type Span struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// DaySpan returns 00:00:00.000 to 23:59:59.999 of the calendar day t falls
// on in loc.
func DaySpan(t time.Time, loc *time.Location) Span {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Span{
		Start: start,
		End:   time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// NewSpan builds the span of a newly created event. A missing end becomes
// start plus DefaultDuration; an end not after start is rejected.
func NewSpan(start time.Time, end *time.Time) (Span, error) {
	if end == nil {
		return Span{Start: start, End: start.Add(DefaultDuration)}, nil
	}
	if !end.After(start) {
		return Span{}, apperr.Invalid("end", "End must be after start")
	}
	return Span{Start: start, End: *end}, nil
}

// ApplyTimeEdit applies a partial start/end edit to current. Both bounds
// must be ordered; a new start alone keeps the prior duration (at least one
// hour); a new end alone must stay after the existing start.
func ApplyTimeEdit(current Span, newStart, newEnd *time.Time) (Span, error) {
	switch {
	case newStart != nil && newEnd != nil:
		if !newEnd.After(*newStart) {
			return current, apperr.Invalid("end", "End must be after start")
		}
		return Span{Start: *newStart, End: *newEnd}, nil
	case newStart != nil:
		d := current.Duration()
		if d < DefaultDuration {
			d = DefaultDuration
		}
		return Span{Start: *newStart, End: newStart.Add(d)}, nil
	case newEnd != nil:
		if !newEnd.After(current.Start) {
			return current, apperr.Invalid("end", "End must be after start")
		}
		return Span{Start: current.Start, End: *newEnd}, nil
	}
	return current, nil
}
