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

// dueHorizon is the default width of GET /api/tasks/due.
const dueHorizon = 7 * 24 * time.Hour

// TaskHandlers serve project tasks.
type TaskHandlers struct {
	store  *store.Store
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

// List handles GET /api/projects/:id/tasks.
func (h *TaskHandlers) List(c *fiber.Ctx) error {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	tasks, err := h.store.ListProjectTasks(c.UserContext(), p.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if tasks == nil {
		tasks = []*store.Task{}
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

// Create handles POST /api/projects/:id/tasks.
func (h *TaskHandlers) Create(c *fiber.Ctx) error {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req createTaskRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var deadline *time.Time
	if req.Deadline != nil && strings.TrimSpace(*req.Deadline) != "" {
		d, err := calendar.ParseInstant(*req.Deadline, h.loc)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid deadline")
		}
		deadline = &d
	}
	assignee := strings.TrimSpace(req.AssignedTo)
	if assignee != "" {
		if err := projectMember(p, assignee); err != nil {
			return respondError(c, h.logger, err)
		}
	}

	t := &store.Task{
		ProjectID:   p.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      status,
		CreatedBy:   currentUser(c),
		AssignedTo:  assignee,
		Deadline:    deadline,
	}
	if err := h.store.CreateTask(c.UserContext(), t); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"task": t})
}

// accessibleTask loads :taskId if the caller can see its project. A task in
// a foreign project is reported as missing.
func (h *TaskHandlers) accessibleTask(c *fiber.Ctx) (*store.Task, *store.Project, error) {
	ctx := c.UserContext()
	t, err := h.store.GetTask(ctx, c.Params("taskId"))
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, apperr.NotFound("Task not found")
	}
	p, err := h.store.AccessibleProject(ctx, t.ProjectID, currentUser(c))
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, apperr.NotFound("Task not found")
	}
	return t, p, nil
}

// Update handles PATCH /api/tasks/:taskId.
func (h *TaskHandlers) Update(c *fiber.Ctx) error {
	t, p, err := h.accessibleTask(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req updateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	if req.Title.Set {
		title := strings.TrimSpace(req.Title.Value)
		if req.Title.Null || title == "" {
			return errorResponse(c, fiber.StatusBadRequest, "Title is required")
		}
		t.Title = title
	}
	if req.Description.Set {
		t.Description = strings.TrimSpace(req.Description.Value)
	}
	if req.Status.Set {
		status := store.TaskStatus(strings.TrimSpace(req.Status.Value))
		if req.Status.Null || !status.Valid() {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid status")
		}
		t.Status = status
	}
	if req.Deadline.Set {
		deadline, err := parseDeadline(req.Deadline.Value, h.loc)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		t.Deadline = deadline
	}
	if req.AssignedTo.Set {
		assignee := strings.TrimSpace(req.AssignedTo.Value)
		if assignee != "" {
			if err := projectMember(p, assignee); err != nil {
				return respondError(c, h.logger, err)
			}
		}
		t.AssignedTo = assignee
	}

	if err := h.store.UpdateTask(c.UserContext(), t); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"task": t})
}

// Delete handles DELETE /api/tasks/:taskId.
func (h *TaskHandlers) Delete(c *fiber.Ctx) error {
	t, _, err := h.accessibleTask(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.store.DeleteTask(c.UserContext(), t.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Due handles GET /api/tasks/due: deadlines across every accessible project
// between from (default now) and to (default a week later).
func (h *TaskHandlers) Due(c *fiber.Ctx) error {
	ctx := c.UserContext()
	now := h.now()
	from := now
	if b := calendar.ParseBound(c.Query("from"), h.loc); b != nil {
		from = *b
	}
	to := from.Add(dueHorizon)
	if b := calendar.ParseBound(c.Query("to"), h.loc); b != nil {
		to = *b
	}

	projects, err := h.store.ListAccessibleProjects(ctx, currentUser(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	tasks, err := h.store.ListDeadlines(ctx, store.ProjectIDs(projects), store.Window{From: &from, To: &to})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	names := store.ProjectNames(projects)
	out := make([]dueTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, dueTask{Task: t, ProjectName: names[t.ProjectID]})
	}
	return c.JSON(fiber.Map{"tasks": out})
}
