package service

import (
	"context"
	"errors"
	"fmt"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/pkg/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedDefaults creates the page catalog, default grants and the bootstrap
// admin account. Rows that already exist are left as they are.
func SeedDefaults(ctx context.Context, pageRepo repository.PageRepository, permRepo repository.PermissionRepository, userRepo repository.UserRepository, admin config.SeedConfig, log logrus.FieldLogger) error {
	// 1. Seed pages first
	if err := pageRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed pages: %w", err)
	}

	// 2. Grant pages to roles
	if err := permRepo.SeedDefaultGrants(ctx); err != nil {
		return fmt.Errorf("seed grants: %w", err)
	}

	// 3. Create default admin user
	_, err := userRepo.FindByEmail(ctx, admin.AdminEmail)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("look up admin user: %w", err)
	}

	user := &model.User{
		Email:        admin.AdminEmail,
		FullName:     "System Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
		TokenVersion: uuid.New().String(),
	}
	user.CreatedBy = "system"
	user.UpdatedBy = "system"
	if err := user.SetPassword(admin.AdminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.WithField("email", admin.AdminEmail).Info("admin user created")
	return nil
}
