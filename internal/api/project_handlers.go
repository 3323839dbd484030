package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/studyhub/internal/apperr"
	"github.com/p-blackswan/studyhub/internal/store"
)

// ProjectHandlers serve projects and their membership.
type ProjectHandlers struct {
	store  *store.Store
	logger zerolog.Logger
}

// List handles GET /api/projects.
func (h *ProjectHandlers) List(c *fiber.Ctx) error {
	projects, err := h.store.ListAccessibleProjects(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if projects == nil {
		projects = []*store.Project{}
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// Create handles POST /api/projects.
func (h *ProjectHandlers) Create(c *fiber.Ctx) error {
	var req createProjectRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	p, err := h.store.CreateProject(c.UserContext(), store.NewProject{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Color:       req.Color,
		OwnerID:     currentUser(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.logger.Info().Str("project_id", p.ID).Str("user_id", p.OwnerID).Msg("project created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": p})
}

// Get handles GET /api/projects/:id.
func (h *ProjectHandlers) Get(c *fiber.Ctx) error {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"project": p})
}

// Join handles POST /api/projects/join. Joining a project the caller
// already belongs to returns it unchanged.
func (h *ProjectHandlers) Join(c *fiber.Ctx) error {
	var req joinProjectRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	code := strings.ToUpper(strings.TrimSpace(req.JoinCode))
	if code == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Join code is required")
	}

	ctx := c.UserContext()
	p, err := h.store.GetProjectByJoinCode(ctx, code)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if p == nil {
		return errorResponse(c, fiber.StatusNotFound, "Invalid join code")
	}

	user := currentUser(c)
	if !p.HasAccess(user) {
		if err := h.store.AddMember(ctx, p.ID, user); err != nil {
			return respondError(c, h.logger, err)
		}
		if p, err = h.store.GetProject(ctx, p.ID); err != nil {
			return respondError(c, h.logger, err)
		}
		h.logger.Info().Str("project_id", p.ID).Str("user_id", user).Msg("member joined project")
	}
	return c.JSON(fiber.Map{"project": p})
}

// Leave handles POST /api/projects/:id/leave.
func (h *ProjectHandlers) Leave(c *fiber.Ctx) error {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	user := currentUser(c)
	if p.OwnerID == user {
		return errorResponse(c, fiber.StatusBadRequest, "Owner cannot leave. Transfer ownership or delete project.")
	}
	if err := h.store.RemoveMember(c.UserContext(), p.ID, user); err != nil {
		return respondError(c, h.logger, err)
	}
	h.logger.Info().Str("project_id", p.ID).Str("user_id", user).Msg("member left project")
	return c.JSON(fiber.Map{"ok": true})
}

// RemoveMember handles DELETE /api/projects/:id/members/:userId. Only the
// owner may remove members; removing a non-member succeeds unchanged.
func (h *ProjectHandlers) RemoveMember(c *fiber.Ctx) error {
	p, err := accessibleProject(c, h.store)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	user := currentUser(c)
	if p.OwnerID != user {
		return errorResponse(c, fiber.StatusForbidden, "Only owner can remove members")
	}
	target := strings.TrimSpace(c.Params("userId"))
	if target == p.OwnerID {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot remove owner")
	}
	if p.IsMember(target) {
		if err := h.store.RemoveMember(c.UserContext(), p.ID, target); err != nil {
			return respondError(c, h.logger, err)
		}
		h.logger.Info().
			Str("project_id", p.ID).
			Str("user_id", target).
			Str("removed_by", user).
			Msg("member removed from project")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// projectMember reports whether userID may be assigned work in p.
func projectMember(p *store.Project, userID string) error {
	if !p.HasAccess(userID) {
		return apperr.Invalid("assignedTo", "Assignee must be a project member")
	}
	return nil
}
