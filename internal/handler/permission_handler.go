package handler

import (
	"tarl-insight-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type PermissionHandler struct {
	service service.PermissionService
	log     logrus.FieldLogger
}

func NewPermissionHandler(s service.PermissionService, log logrus.FieldLogger) *PermissionHandler {
	return &PermissionHandler{service: s, log: log}
}

// GetPermissions returns action grants grouped by page, role and action
// GET /api/v1/permissions?pageName=&role=
func (h *PermissionHandler) GetPermissions(c *fiber.Ctx) error {
	snapshot, err := h.service.Snapshot(c.UserContext(), c.Query("pageName"), c.Query("role"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// UpsertPermission sets one action grant
// PUT /api/v1/permissions
func (h *PermissionHandler) UpsertPermission(c *fiber.Ctx) error {
	var req service.UpsertActionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.service.UpsertPageActionPermission(c.UserContext(), &req, changedBy(identity)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Permission updated"})
}

// BulkUpdatePermissions sets several action grants of one page and role at once
// POST /api/v1/permissions
func (h *PermissionHandler) BulkUpdatePermissions(c *fiber.Ctx) error {
	var req service.BulkActionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.service.BulkUpdateActionPermissions(c.UserContext(), &req, changedBy(identity)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Permissions updated", "count": len(req.Actions)})
}

// GET /api/v1/permissions/actions
func (h *PermissionHandler) GetActions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.AvailableActions()})
}

// Check answers whether the caller may perform an action on a page
// GET /api/v1/permissions/check?pageName=&action=
func (h *PermissionHandler) Check(c *fiber.Ctx) error {
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	pageName, action := c.Query("pageName"), c.Query("action")

	allowed, err := h.service.CanPerform(c.UserContext(), identity.Role.String(), pageName, action)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"pageName": pageName,
		"action":   action,
		"role":     identity.Role,
		"allowed":  allowed,
	})
}

// GET /api/v1/permissions/roles/:role
func (h *PermissionHandler) GetRolePermissions(c *fiber.Ctx) error {
	byPage, err := h.service.RoleActionPermissions(c.UserContext(), c.Params("role"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": byPage})
}

// GetPagePermissions lists page-level grants, optionally for one role
// GET /api/v1/permissions/pages?role=
func (h *PermissionHandler) GetPagePermissions(c *fiber.Ctx) error {
	rows, err := h.service.PagePermissions(c.UserContext(), c.Query("role"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := make([]fiber.Map, len(rows))
	for i, r := range rows {
		out[i] = fiber.Map{
			"pageId":    r.PageID,
			"pageName":  r.PageName,
			"pagePath":  r.PagePath,
			"role":      r.Role,
			"isAllowed": r.IsAllowed,
		}
	}
	return c.JSON(fiber.Map{"data": out})
}

// PUT /api/v1/permissions/pages
func (h *PermissionHandler) SetPagePermission(c *fiber.Ctx) error {
	var req service.PagePermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.service.SetPagePermission(c.UserContext(), &req, changedBy(identity)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Page permission updated"})
}

// GetPages returns the page catalog
// GET /api/v1/pages
func (h *PermissionHandler) GetPages(c *fiber.Ctx) error {
	pages, err := h.service.ListPages(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": pages})
}
