package handler

import (
	"tarl-insight-hub/internal/middleware"
	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/service"
	"tarl-insight-hub/internal/ws"
	"tarl-insight-hub/pkg/config"
	"tarl-insight-hub/pkg/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Router wires the HTTP surface. Hub and Metrics are optional.
type Router struct {
	Auth        service.AuthService
	Permissions service.PermissionService
	Menu        service.MenuService
	Users       service.UserService
	Session     config.SessionConfig
	Hub         *ws.Hub
	Metrics     *metrics.Metrics
	Log         logrus.FieldLogger
}

func (r Router) Register(app *fiber.App) {
	authHandler := NewAuthHandler(r.Auth, r.Session, r.Log)
	permHandler := NewPermissionHandler(r.Permissions, r.Log)
	menuHandler := NewMenuHandler(r.Menu, r.Log)
	roleHandler := NewRoleHandler()
	userHandler := NewUserHandler(r.Users, r.Log)

	requireAuth := middleware.RequireAuth(r.Auth, r.Session.CookieName, r.Log)
	adminOnly := middleware.RequireAdmin()

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if r.Metrics != nil {
		app.Get("/metrics", r.Metrics.Handler())
	}

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", requireAuth, authHandler.Logout)
	auth.Get("/me", requireAuth, authHandler.Me)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Permission matrix (writes are admin only)
	protected.Get("/permissions", permHandler.GetPermissions)
	protected.Put("/permissions", adminOnly, permHandler.UpsertPermission)
	protected.Post("/permissions", adminOnly, permHandler.BulkUpdatePermissions)
	protected.Get("/permissions/actions", permHandler.GetActions)
	protected.Get("/permissions/check", permHandler.Check)
	protected.Get("/permissions/roles/:role", permHandler.GetRolePermissions)
	protected.Get("/permissions/pages", permHandler.GetPagePermissions)
	protected.Put("/permissions/pages", adminOnly, permHandler.SetPagePermission)

	// Page catalog, visible to whoever may open the permission screen
	protected.Get("/pages",
		middleware.RequirePageAction(r.Permissions, model.PagePagePermissions, model.ActionView, r.Log),
		permHandler.GetPages)
	protected.Get("/roles", roleHandler.GetRoles)

	// User management (admin only)
	protected.Get("/users", adminOnly, userHandler.GetUsers)
	protected.Get("/users/:id", adminOnly, userHandler.GetUser)
	protected.Post("/users", adminOnly, userHandler.CreateUser)
	protected.Put("/users/:id", adminOnly, userHandler.UpdateUser)
	protected.Delete("/users/:id", adminOnly, userHandler.DeleteUser)

	// Personal menu
	protected.Get("/user/menu-order", menuHandler.GetMenuOrder)
	protected.Put("/user/menu-order", menuHandler.SaveMenuOrder)
	protected.Delete("/user/menu-order", menuHandler.ResetMenuOrder)

	if r.Hub != nil {
		r.registerWebSocket(app, requireAuth)
	}
}

func (r Router) registerWebSocket(app *fiber.App, requireAuth fiber.Handler) {
	hub := r.Hub
	app.Use("/ws", requireAuth, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Add(c) {
			c.Close()
			return
		}
		defer hub.Remove(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
