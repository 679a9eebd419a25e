// Package config loads application settings from the environment (and an optional config.env) via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config groups application settings.
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	Worker    WorkerConfig
	Audit     AuditConfig
	Numbering NumberingConfig
	Storage   string

	// CatalogFile is an optional JSON master data file loaded by the seeder
	// and by the memory driver at startup.
	CatalogFile string
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Env      string // development, staging, production
	Port     string
	LogLevel string
}

// IsDevelopment reports whether the process runs in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DBConfig holds PostgreSQL settings.
type DBConfig struct {
	URL              string
	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration
	LockTimeout      time.Duration
	AutoMigrate      bool
}

// JWTConfig holds bearer token settings. An empty secret disables token checks.
type JWTConfig struct {
	Secret string
	Issuer string
}

// WorkerConfig holds background poller settings.
type WorkerConfig struct {
	AlertPollInterval  time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

// AuditConfig holds audit trail storage settings.
type AuditConfig struct {
	CompressThreshold int
}

// NumberingConfig holds movement display number settings.
type NumberingConfig struct {
	Strategy  string // strict, cached
	RangeSize int64
}

// Load reads configuration. Environment variables take precedence over config.env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			URL:              v.GetString("DATABASE_URL"),
			MaxConns:         v.GetInt32("DB_MAX_CONNS"),
			MinConns:         v.GetInt32("DB_MIN_CONNS"),
			StatementTimeout: v.GetDuration("DB_STATEMENT_TIMEOUT"),
			LockTimeout:      v.GetDuration("DB_LOCK_TIMEOUT"),
			AutoMigrate:      v.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Worker: WorkerConfig{
			AlertPollInterval:  v.GetDuration("ALERT_POLL_INTERVAL"),
			OutboxPollInterval: v.GetDuration("OUTBOX_POLL_INTERVAL"),
			OutboxBatchSize:    v.GetInt("OUTBOX_BATCH_SIZE"),
		},
		Audit: AuditConfig{
			CompressThreshold: v.GetInt("AUDIT_COMPRESS_THRESHOLD"),
		},
		Numbering: NumberingConfig{
			Strategy:  strings.ToLower(v.GetString("NUMBERING_STRATEGY")),
			RangeSize: v.GetInt64("NUMBERING_RANGE_SIZE"),
		},
		Storage:     strings.ToLower(v.GetString("STORAGE_DRIVER")),
		CatalogFile: v.GetString("CATALOG_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_STATEMENT_TIMEOUT", "30s")
	v.SetDefault("DB_LOCK_TIMEOUT", "5s")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("JWT_ISSUER", "hydrostock")
	v.SetDefault("ALERT_POLL_INTERVAL", "5m")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "5s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
	v.SetDefault("AUDIT_COMPRESS_THRESHOLD", 10*1024)
	v.SetDefault("NUMBERING_STRATEGY", "strict")
	v.SetDefault("NUMBERING_RANGE_SIZE", 50)
}

// Validate rejects impossible combinations.
func (c *Config) Validate() error {
	switch c.Storage {
	case DriverPostgres:
		if c.DB.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage)
	}
	if c.DB.MaxConns <= 0 || c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("invalid pool size: min %d, max %d", c.DB.MinConns, c.DB.MaxConns)
	}
	if c.DB.StatementTimeout <= 0 || c.DB.LockTimeout <= 0 {
		return errors.New("DB_STATEMENT_TIMEOUT and DB_LOCK_TIMEOUT must be positive")
	}
	if c.Worker.AlertPollInterval <= 0 || c.Worker.OutboxPollInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if c.Worker.OutboxBatchSize <= 0 {
		return errors.New("OUTBOX_BATCH_SIZE must be positive")
	}
	switch c.Numbering.Strategy {
	case "strict", "cached":
	default:
		return fmt.Errorf("unknown NUMBERING_STRATEGY %q", c.Numbering.Strategy)
	}
	if c.Numbering.RangeSize <= 0 {
		return errors.New("NUMBERING_RANGE_SIZE must be positive")
	}
	if c.Audit.CompressThreshold < 0 {
		return errors.New("AUDIT_COMPRESS_THRESHOLD must not be negative")
	}
	return nil
}
