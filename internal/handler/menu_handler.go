package handler

import (
	"tarl-insight-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MenuHandler struct {
	service service.MenuService
	log     logrus.FieldLogger
}

func NewMenuHandler(s service.MenuService, log logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{service: s, log: log}
}

// GetMenuOrder returns the caller's menu in display order
// GET /api/v1/user/menu-order
func (h *MenuHandler) GetMenuOrder(c *fiber.Ctx) error {
	identity, userID, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	view, err := h.service.EffectiveMenuOrder(c.UserContext(), userID, identity.Role.String())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(view)
}

// SaveMenuOrder stores the caller's personal order
// PUT /api/v1/user/menu-order
func (h *MenuHandler) SaveMenuOrder(c *fiber.Ctx) error {
	var req service.SaveMenuOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	_, userID, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.service.SavePersonalOrder(c.UserContext(), userID, &req); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Menu order saved"})
}

// ResetMenuOrder drops the caller's personal order
// DELETE /api/v1/user/menu-order
func (h *MenuHandler) ResetMenuOrder(c *fiber.Ctx) error {
	_, userID, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.service.ResetToDefault(c.UserContext(), userID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Menu order reset to default"})
}
