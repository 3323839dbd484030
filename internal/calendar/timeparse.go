package calendar

import (
	"fmt"
	"strings"
	"time"
)

// zonedLayouts extend RFC 3339 with minute precision, as browsers emit.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant parses RFC 3339 timestamps (with or without seconds or a
// fraction) and zone-less date or date-time strings, which are read in loc.
func ParseInstant(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

// ParseBound parses an optional window bound. Empty or malformed input
// yields nil so the bound is dropped instead of failing the request.
func ParseBound(raw string, loc *time.Location) *time.Time {
	t, err := ParseInstant(raw, loc)
	if err != nil {
		return nil
	}
	return &t
}
