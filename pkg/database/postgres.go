package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres pool described by cfg
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pooled (transaction mode) proxies
	}), &gorm.Config{
		Logger:         newLogger,
		PrepareStmt:    false,
		TranslateError: true, // Unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// legacyUserEmailIndex also covered soft-deleted users
const legacyUserEmailIndex = "idx_users_email"

// Migrate creates or updates the tables this service owns
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Page{},
		&model.RolePagePermission{},
		&model.PageActionPermission{},
		&model.UserMenuOrder{},
		&model.UserMenuPreference{},
	)
	if err != nil {
		return err
	}

	m := db.Migrator()
	if m.HasIndex(&model.User{}, legacyUserEmailIndex) {
		return m.DropIndex(&model.User{}, legacyUserEmailIndex)
	}
	return nil
}
