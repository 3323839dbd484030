package monthgrid

import (
	"sort"
	"time"

	"github.com/p-blackswan/studyhub/internal/calendar"
)

// Buckets groups items by the local day of their start.
type Buckets struct {
	loc   *time.Location
	byDay map[string][]calendar.Item
}

// BucketByDay groups items by the local calendar day of Start, ignoring
// End. Each bucket is sorted by start, ties keeping input order.
func BucketByDay(items []calendar.Item, loc *time.Location) Buckets {
	if loc == nil {
		loc = time.UTC
	}
	b := Buckets{loc: loc, byDay: make(map[string][]calendar.Item)}
	for _, item := range items {
		key := DayKey(item.Base().Start, loc)
		b.byDay[key] = append(b.byDay[key], item)
	}
	for _, bucket := range b.byDay {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Base().Start.Before(bucket[j].Base().Start)
		})
	}
	return b
}

// Day returns the bucket of the day containing t.
func (b Buckets) Day(t time.Time) []calendar.Item {
	return b.byDay[DayKey(t, b.loc)]
}

// Key returns the bucket stored under a "YYYY-MM-DD" key.
func (b Buckets) Key(key string) []calendar.Item {
	return b.byDay[key]
}
