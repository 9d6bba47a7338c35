package main

import (
	"os"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/internal/service"
	"tarl-insight-hub/pkg/config"
	"tarl-insight-hub/pkg/database"
	"tarl-insight-hub/pkg/jwt"
	"tarl-insight-hub/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "permctl",
	Short: "Administer TaRL Insight Hub page permissions",
	Long: `Administrative commands for the page, role and action permission store.

Configuration is read from the environment (and .env when present), the
same way the API server reads it.`,
	SilenceUsage: true,
}

// env holds the services commands work with
type env struct {
	cfg         *config.Config
	log         *logrus.Logger
	db          *gorm.DB
	pageRepo    repository.PageRepository
	permRepo    repository.PermissionRepository
	userRepo    repository.UserRepository
	permissions service.PermissionService
	menu        service.MenuService
	auth        service.AuthService
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, os.Stderr), nil
}

// openEnv connects to the database and builds every service
func openEnv() (*env, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:      cfg,
		log:      log,
		db:       db,
		pageRepo: repository.NewPageRepo(db),
		permRepo: repository.NewPermissionRepo(db),
		userRepo: repository.NewUserRepo(db),
	}
	e.permissions = service.NewPermissionService(e.pageRepo, e.permRepo, service.PermissionOptions{
		MissingAction: cfg.Permission.MissingAction,
		Actions:       model.NewActionSet(cfg.Permission.ExtraActions...),
		Logger:        log,
	})
	e.menu = service.NewMenuService(repository.NewMenuRepo(db), e.pageRepo, nil, nil, log)
	e.auth = service.NewAuthService(e.userRepo, jwt.NewManager(cfg.Session.JWTSecret, cfg.Session.TTL))
	return e, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
