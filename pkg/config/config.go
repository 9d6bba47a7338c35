package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MissingActionPolicy decides the outcome for a role that holds a page
// grant but has no row for the requested action.
type MissingActionPolicy string

const (
	MissingActionAllow MissingActionPolicy = "allow"
	MissingActionDeny  MissingActionPolicy = "deny"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Session    SessionConfig
	Permission PermissionConfig
	Seed       SeedConfig

	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port             string
	CORSAllowOrigins string
	ShutdownTimeout  time.Duration
}

// DatabaseConfig holds connection settings. URL wins over the discrete fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	TimeZone string
	LogSQL   bool
}

// SessionConfig holds session token settings
type SessionConfig struct {
	JWTSecret    string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// PermissionConfig holds resolver policy
type PermissionConfig struct {
	MissingAction MissingActionPolicy
	ExtraActions  []string
}

// SeedConfig holds the bootstrap administrator account
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

const defaultJWTSecret = "your-super-secret-key-change-in-production"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnv("PORT", "3000"),
			CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "tarl_insight_hub"),
			Port:     getEnv("DB_PORT", "5432"),
			TimeZone: getEnv("DB_TIMEZONE", "Asia/Phnom_Penh"),
		},
		Session: SessionConfig{
			JWTSecret:  getEnv("JWT_SECRET", defaultJWTSecret),
			CookieName: getEnv("SESSION_COOKIE_NAME", "tarl_session"),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@tarl.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Server.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Session.TTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Session.CookieSecure, err = getBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.Database.LogSQL, err = getBool("DB_LOG_SQL", false); err != nil {
		return nil, err
	}

	policy := MissingActionPolicy(strings.ToLower(getEnv("PERMISSION_MISSING_ACTION_DEFAULT", string(MissingActionAllow))))
	switch policy {
	case MissingActionAllow, MissingActionDeny:
		cfg.Permission.MissingAction = policy
	default:
		return nil, fmt.Errorf("PERMISSION_MISSING_ACTION_DEFAULT must be %q or %q, got %q", MissingActionAllow, MissingActionDeny, policy)
	}
	cfg.Permission.ExtraActions = splitList(os.Getenv("PERMISSION_EXTRA_ACTIONS"))

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	return cfg, nil
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset
func (s SessionConfig) UsesDefaultSecret() bool {
	return s.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
