package handler

import (
	"tarl-insight-hub/internal/model"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	roles []model.Role
}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{roles: model.AllRoles}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.roles})
}
