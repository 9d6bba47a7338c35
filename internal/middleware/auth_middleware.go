package middleware

import (
	"errors"
	"strings"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LocalIdentity is the fiber locals key holding the caller set by RequireAuth
const LocalIdentity = "identity"

// RequireAuth validates the session token and sets the caller in context.
// The session cookie is tried first; when it is rejected and an
// Authorization header is present, the bearer token is tried instead.
func RequireAuth(authService service.AuthService, cookieName string, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(cookieName)
		authHeader := c.Get(fiber.HeaderAuthorization)
		if cookie == "" && authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing session token"})
		}

		var identity *model.Identity
		var err error
		if cookie != "" {
			identity, err = authService.Authenticate(c.UserContext(), cookie)
			if errors.Is(err, service.ErrUnauthorized) && authHeader != "" {
				identity, err = nil, nil
			}
		}

		if identity == nil && err == nil {
			// Extract token from "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
			}
			identity, err = authService.Authenticate(c.UserContext(), parts[1])
		}

		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			}
			log.WithError(err).Error("session lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		c.Locals(LocalIdentity, identity)

		return c.Next()
	}
}

// CurrentIdentity returns the caller set by RequireAuth
func CurrentIdentity(c *fiber.Ctx) (*model.Identity, bool) {
	identity, ok := c.Locals(LocalIdentity).(*model.Identity)
	return identity, ok && identity != nil
}

// RequireAdmin lets only the admin role through
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !identity.Role.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: requires admin role"})
		}
		return c.Next()
	}
}

// RequirePageAction checks the caller's role against a page action grant
func RequirePageAction(perms service.PermissionService, pageName, action string, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		allowed, err := perms.CanPerform(c.UserContext(), identity.Role.String(), pageName, action)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"page":   pageName,
				"action": action,
			}).Error("permission check failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: requires '" + action + "' on '" + pageName + "'",
			})
		}
		return c.Next()
	}
}
