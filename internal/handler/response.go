package handler

import (
	"errors"

	"tarl-insight-hub/internal/middleware"
	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// respondError maps the service error taxonomy onto HTTP status codes.
// Internal errors are logged and replaced by a generic message.
func respondError(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": ve.Fields})
	case errors.Is(err, service.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}

// caller returns the authenticated identity and its parsed user id
func caller(c *fiber.Ctx) (*model.Identity, uuid.UUID, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil, uuid.Nil, service.ErrUnauthorized
	}
	id, err := uuid.Parse(identity.UserID)
	if err != nil {
		return nil, uuid.Nil, service.ErrUnauthorized
	}
	return identity, id, nil
}

// changedBy names the caller in audit columns
func changedBy(identity *model.Identity) string {
	if identity.Email != "" {
		return identity.Email
	}
	return identity.UserID
}
