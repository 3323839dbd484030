package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/studyhub/internal/apperr"
	"github.com/p-blackswan/studyhub/internal/calendar"
	"github.com/p-blackswan/studyhub/internal/store"
)

// Default window of GET /api/projects/:id/events when a bound is absent.
const (
	projectEventsLookBehind = 30 * 24 * time.Hour
	projectEventsLookAhead  = 60 * 24 * time.Hour
)

// EventHandlers serve personal and project events.
type EventHandlers struct {
	store  *store.Store
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

// ListPersonal handles GET /api/events, returning the caller's events in
// the calendar item shape.
func (h *EventHandlers) ListPersonal(c *fiber.Ctx) error {
	w := store.Window{
		From: calendar.ParseBound(c.Query("from"), h.loc),
		To:   calendar.ParseBound(c.Query("to"), h.loc),
	}
	events, err := h.store.ListPersonalEvents(c.UserContext(), currentUser(c), w)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	items := make([]calendar.Item, len(events))
	for i, e := range events {
		items[i] = calendar.FromPersonalEvent(e)
	}
	return c.JSON(fiber.Map{"events": items})
}

// CreatePersonal handles POST /api/events.
func (h *EventHandlers) CreatePersonal(c *fiber.Ctx) error {
	var req createEventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	span, err := req.span(h.loc)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	e := &store.PersonalEvent{
		OwnerID:     currentUser(c),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Start:       span.Start,
		End:         span.End,
		AllDay:      req.AllDay,
		Color:       req.Color,
	}
	if err := h.store.CreatePersonalEvent(c.UserContext(), e); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"event": e})
}

// ownedPersonalEvent loads the event and checks the caller owns it.
func (h *EventHandlers) ownedPersonalEvent(c *fiber.Ctx) (*store.PersonalEvent, error) {
	e, err := h.store.GetPersonalEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.NotFound("Event not found")
	}
	if e.OwnerID != currentUser(c) {
		return nil, apperr.Forbidden("Forbidden")
	}
	return e, nil
}

// UpdatePersonal handles PATCH /api/events/:id.
func (h *EventHandlers) UpdatePersonal(c *fiber.Ctx) error {
	e, err := h.ownedPersonalEvent(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req updateEventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	span, err := req.apply(&e.Title, &e.Description, calendar.Span{Start: e.Start, End: e.End}, h.loc)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	e.Start, e.End = span.Start, span.End
	if req.AllDay.Set && !req.AllDay.Null {
		e.AllDay = req.AllDay.Value
	}
	if req.Color.Set {
		color := strings.TrimSpace(req.Color.Value)
		if color == "" {
			color = store.DefaultPersonalColor
		}
		if err := validate.Var(color, "hexcolor"); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid color")
		}
		e.Color = color
	}

	if err := h.store.UpdatePersonalEvent(c.UserContext(), e); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"event": e})
}

// DeletePersonal handles DELETE /api/events/:id.
func (h *EventHandlers) DeletePersonal(c *fiber.Ctx) error {
	e, err := h.ownedPersonalEvent(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.store.DeletePersonalEvent(c.UserContext(), e.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// accessibleProject loads :id if the caller can see it.
func accessibleProject(c *fiber.Ctx, s *store.Store) (*store.Project, error) {
	p, err := s.AccessibleProject(c.UserContext(), c.Params("id"), currentUser(c))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Project not found")
	}
	return p, nil
}

// ListProject handles GET /api/projects/:id/events. Unlike /api/calendar,
// a malformed bound is rejected.
func (h *EventHandlers) ListProject(c *fiber.Ctx) error {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	now := h.now()
	from := now.Add(-projectEventsLookBehind)
	to := now.Add(projectEventsLookAhead)
	if raw := c.Query("from"); raw != "" {
		if from, err = calendar.ParseInstant(raw, h.loc); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid date range")
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = calendar.ParseInstant(raw, h.loc); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid date range")
		}
	}

	events, err := h.store.ListProjectEvents(c.UserContext(), []string{p.ID}, store.Window{From: &from, To: &to})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if events == nil {
		events = []*store.ProjectEvent{}
	}
	return c.JSON(fiber.Map{"events": events, "project": p})
}

// CreateProject handles POST /api/projects/:id/events.
func (h *EventHandlers) CreateProject(c *fiber.Ctx) error {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req createEventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	span, err := req.span(h.loc)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	e := &store.ProjectEvent{
		ProjectID:   p.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Start:       span.Start,
		End:         span.End,
		AllDay:      req.AllDay,
		CreatedBy:   currentUser(c),
	}
	if err := h.store.CreateProjectEvent(c.UserContext(), e); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"event": e})
}

// editableProjectEvent loads the event; only the project owner or the
// event's creator may change it.
func (h *EventHandlers) editableProjectEvent(c *fiber.Ctx) (*store.ProjectEvent, error) {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return nil, err
	}
	e, err := h.store.GetProjectEvent(c.UserContext(), p.ID, c.Params("eventId"))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.NotFound("Event not found")
	}
	user := currentUser(c)
	if p.OwnerID != user && e.CreatedBy != user {
		return nil, apperr.Forbidden("Forbidden")
	}
	return e, nil
}

// UpdateProject handles PATCH /api/projects/:id/events/:eventId.
func (h *EventHandlers) UpdateProject(c *fiber.Ctx) error {
	e, err := h.editableProjectEvent(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req updateEventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	span, err := req.apply(&e.Title, &e.Description, calendar.Span{Start: e.Start, End: e.End}, h.loc)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	e.Start, e.End = span.Start, span.End
	if req.AllDay.Set && !req.AllDay.Null {
		e.AllDay = req.AllDay.Value
	}

	if err := h.store.UpdateProjectEvent(c.UserContext(), e); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"event": e})
}

// DeleteProject handles DELETE /api/projects/:id/events/:eventId.
func (h *EventHandlers) DeleteProject(c *fiber.Ctx) error {
	e, err := h.editableProjectEvent(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.store.DeleteProjectEvent(c.UserContext(), e.ProjectID, e.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
