package api

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/studyhub/internal/calendar"
	"github.com/p-blackswan/studyhub/internal/metrics"
	"github.com/p-blackswan/studyhub/internal/monthgrid"
	"github.com/p-blackswan/studyhub/internal/store"
)

const icsCalendarName = "StudyHub"

// CalendarHandlers serve the aggregated calendar.
type CalendarHandlers struct {
	agg     *calendar.Aggregator
	metrics *metrics.Metrics
	now     func() time.Time
	logger  zerolog.Logger
}

// query reads projectId and the optional from/to bounds. Malformed bounds
// are treated as absent.
func (h *CalendarHandlers) query(c *fiber.Ctx) calendar.Query {
	loc := h.agg.Location()
	return calendar.Query{
		UserID: currentUser(c),
		Window: store.Window{
			From: calendar.ParseBound(c.Query("from"), loc),
			To:   calendar.ParseBound(c.Query("to"), loc),
		},
		ProjectID: strings.TrimSpace(c.Query("projectId")),
	}
}

func (h *CalendarHandlers) items(c *fiber.Ctx, q calendar.Query) ([]calendar.Item, error) {
	items, err := h.agg.Items(c.UserContext(), q)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("calendar", "aggregate")
		}
		return nil, err
	}
	if h.metrics != nil {
		scope := "dashboard"
		if q.ProjectID != "" {
			scope = "project"
		}
		byKind := make(map[string]int, 2)
		for _, item := range items {
			byKind[string(item.Kind())]++
		}
		h.metrics.RecordCalendar(scope, byKind)
	}
	return items, nil
}

// Items handles GET /api/calendar.
func (h *CalendarHandlers) Items(c *fiber.Ctx) error {
	items, err := h.items(c, h.query(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// Month handles GET /api/calendar/month?month=YYYY-MM&day=YYYY-MM-DD.
func (h *CalendarHandlers) Month(c *fiber.Ctx) error {
	loc := h.agg.Location()
	now := h.now()

	m := monthgrid.New(now, loc)
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := monthgrid.Parse(raw, loc)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid month")
		}
		m = parsed
	}

	var state monthgrid.ViewState
	if raw := strings.TrimSpace(c.Query("day")); raw != "" {
		day, err := time.ParseInLocation(monthgrid.DayLayout, raw, loc)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid day")
		}
		state = state.Select(day)
		state.EditingItemKey = strings.TrimSpace(c.Query("editing"))
	}

	from, to := m.FetchWindow()
	q := calendar.Query{
		UserID:    currentUser(c),
		Window:    store.Window{From: &from, To: &to},
		ProjectID: strings.TrimSpace(c.Query("projectId")),
	}
	items, err := h.items(c, q)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(monthgrid.BuildView(m, items, state, now))
}

// ICS handles GET /api/calendar.ics, exporting the same items as
// /api/calendar as an iCalendar feed.
func (h *CalendarHandlers) ICS(c *fiber.Ctx) error {
	items, err := h.items(c, h.query(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, icsCalendarName, items, h.agg.Location(), h.now()); err != nil {
		return respondError(c, h.logger, err)
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="studyhub.ics"`)
	return c.Send(buf.Bytes())
}
