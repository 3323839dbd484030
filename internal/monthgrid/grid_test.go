package monthgrid

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/studyhub/internal/calendar"
)

func TestCells_AllMonths(t *testing.T) {
	for year := 1990; year <= 2040; year++ {
		for month := time.January; month <= time.December; month++ {
			m := New(time.Date(year, month, 15, 12, 0, 0, 0, time.UTC), time.UTC)
			cells := m.Cells()

			assert.Zero(t, len(cells)%7, "%s cell count", m)
			assert.GreaterOrEqual(t, len(cells), m.Days(), "%s", m)
			assert.LessOrEqual(t, len(cells), 42, "%s", m)

			first := -1
			nonNil := 0
			for i, c := range cells {
				if c == nil {
					continue
				}
				if first < 0 {
					first = i
				}
				nonNil++
			}
			require.GreaterOrEqual(t, first, 0)
			assert.Equal(t, m.Days(), nonNil, "%s", m)
			assert.Equal(t, 1, cells[first].Day(), "%s", m)
			// the first day sits in the column of its weekday
			assert.Equal(t, mondayIndex(cells[first].Weekday()), first%7, "%s", m)
			assert.Less(t, first, 7, "%s", m)

			start := m.GridStart()
			assert.Equal(t, time.Monday, start.Weekday(), "%s", m)
			assert.False(t, start.After(m.First()), "%s", m)
			assert.Equal(t, time.Sunday, m.GridEnd().Weekday(), "%s", m)
			assert.Equal(t, len(cells), int(m.GridEnd().Sub(start).Hours()/24)+1, "%s", m)
		}
	}
}

func TestCells_KnownMonths(t *testing.T) {
	// March 2024 starts on a Friday and ends on a Sunday.
	m := New(time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), time.UTC)
	cells := m.Cells()
	require.Len(t, cells, 35)
	for i := 0; i < 4; i++ {
		assert.Nil(t, cells[i])
	}
	require.NotNil(t, cells[4])
	assert.Equal(t, 1, cells[4].Day())
	require.NotNil(t, cells[34])
	assert.Equal(t, 31, cells[34].Day())

	// February 2021 starts on a Monday and fills exactly four weeks.
	feb := New(time.Date(2021, time.February, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Len(t, feb.Cells(), 28)
	assert.Len(t, feb.Weeks(), 4)

	// September 2024 starts on a Sunday and needs six rows.
	sep := New(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Len(t, sep.Weeks(), 6)
	for _, w := range sep.Weeks() {
		assert.Len(t, w, 7)
	}
}

func TestFetchWindow(t *testing.T) {
	m := New(time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), time.UTC)
	from, to := m.FetchWindow()
	assert.Equal(t, "2024-02-26T00:00:00.000Z", calendar.FormatInstant(from))
	assert.Equal(t, "2024-03-31T23:59:59.999Z", calendar.FormatInstant(to))

	apr := New(time.Date(2024, time.April, 7, 0, 0, 0, 0, time.UTC), time.UTC)
	from, to = apr.FetchWindow()
	assert.Equal(t, "2024-04-01T00:00:00.000Z", calendar.FormatInstant(from))
	assert.Equal(t, "2024-05-05T23:59:59.999Z", calendar.FormatInstant(to))
}

func TestFetchWindow_Location(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	m := New(time.Date(2024, time.March, 7, 0, 0, 0, 0, tokyo), tokyo)
	from, _ := m.FetchWindow()
	assert.Equal(t, "2024-02-25T15:00:00.000Z", calendar.FormatInstant(from))
}

func TestNavigation(t *testing.T) {
	m := New(time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "2024-01", m.String())
	assert.Equal(t, "2023-12", m.Prev().String())
	assert.Equal(t, "2024-02", m.Next().String())
	assert.Equal(t, "2024-03", m.Next().Next().String())
	assert.Equal(t, "2025-07", m.Today(time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)).String())
}

func TestParse(t *testing.T) {
	m, err := Parse("2024-02", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year())
	assert.Equal(t, time.February, m.Month())
	assert.Equal(t, 29, m.Days())

	for _, raw := range []string{"", "2024", "2024-13", "Feb 2024"} {
		_, err := Parse(raw, time.UTC)
		assert.Error(t, err, raw)
	}
}

func TestWeekdays(t *testing.T) {
	assert.Equal(t, time.Monday, Weekdays[0])
	assert.Equal(t, time.Sunday, Weekdays[6])
	for i, d := range Weekdays {
		assert.Equal(t, i, mondayIndex(d))
	}
}
