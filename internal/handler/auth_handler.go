package handler

import (
	"time"

	"tarl-insight-hub/internal/service"
	"tarl-insight-hub/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService service.AuthService
	session     config.SessionConfig
	log         logrus.FieldLogger
}

func NewAuthHandler(authService service.AuthService, session config.SessionConfig, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, session: session, log: log}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	c.Cookie(h.sessionCookie(response.Token, time.Now().Add(h.session.TTL)))
	return c.JSON(response)
}

// Logout ends the caller's session on every device
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	_, userID, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.authService.Logout(c.UserContext(), userID); err != nil {
		return respondError(c, h.log, err)
	}

	c.Cookie(h.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me returns the caller's identity
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, _, err := caller(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(identity)
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     h.session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
