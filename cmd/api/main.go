package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tarl-insight-hub/internal/handler"
	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/internal/service"
	"tarl-insight-hub/internal/ws"
	"tarl-insight-hub/pkg/config"
	"tarl-insight-hub/pkg/database"
	"tarl-insight-hub/pkg/jwt"
	applog "tarl-insight-hub/pkg/logger"
	"tarl-insight-hub/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		applog.New("info", os.Stderr).WithError(err).Fatal("invalid configuration")
	}
	log := applog.New(cfg.LogLevel, os.Stderr)
	if envErr != nil {
		log.Warn(".env file not found")
	}
	if cfg.Session.UsesDefaultSecret() {
		log.Warn("JWT_SECRET not set, using the built-in development secret")
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Repositories and seed data
	pageRepo := repository.NewPageRepo(db)
	permRepo := repository.NewPermissionRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := service.SeedDefaults(ctx, pageRepo, permRepo, userRepo, cfg.Seed, log); err != nil {
		log.WithError(err).Warn("seeding defaults failed")
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	m := metrics.New()
	permService := service.NewPermissionService(pageRepo, permRepo, service.PermissionOptions{
		MissingAction: cfg.Permission.MissingAction,
		Actions:       model.NewActionSet(cfg.Permission.ExtraActions...),
		Notifier:      wsHub,
		Metrics:       m,
		Logger:        log,
	})
	menuService := service.NewMenuService(menuRepo, pageRepo, wsHub, m, log)
	authService := service.NewAuthService(userRepo, jwt.NewManager(cfg.Session.JWTSecret, cfg.Session.TTL))

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "TaRL Insight Hub Permissions v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSAllowOrigins,
		AllowCredentials: cfg.Server.CORSAllowOrigins != "*",
	}))

	// 7. Routes
	handler.Router{
		Auth:        authService,
		Permissions: permService,
		Menu:        menuService,
		Users:       service.NewUserService(userRepo),
		Session:     cfg.Session,
		Hub:         wsHub,
		Metrics:     m,
		Log:         log,
	}.Register(app)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}
