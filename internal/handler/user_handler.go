package handler

import (
	"tarl-insight-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userService service.UserService
	log         logrus.FieldLogger
}

func NewUserHandler(userService service.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req, identity.UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// GetUsers returns all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": users})
}

// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": user})
}

// UpdateUser replaces a user's profile, role and status
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	user, err := h.userService.UpdateUser(c.UserContext(), userID, &req, identity.UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user,
	})
}

// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.userService.DeleteUser(c.UserContext(), userID, identity.UserID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
