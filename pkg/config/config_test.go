package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithMemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, 30*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Worker.AlertPollInterval)
	assert.Equal(t, 10*1024, cfg.Audit.CompressThreshold)
	assert.Equal(t, "strict", cfg.Numbering.Strategy)
	assert.Equal(t, int64(50), cfg.Numbering.RangeSize)
	assert.False(t, cfg.App.IsDevelopment())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost:5432/hydrostock")
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_LOCK_TIMEOUT", "750ms")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("OUTBOX_BATCH_SIZE", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage)
	assert.Equal(t, 750*time.Millisecond, cfg.DB.LockTimeout)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 7, cfg.Worker.OutboxBatchSize)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:   DriverMemory,
			DB:        DBConfig{MaxConns: 5, MinConns: 1, StatementTimeout: time.Second, LockTimeout: time.Second},
			Worker:    WorkerConfig{AlertPollInterval: time.Minute, OutboxPollInterval: time.Second, OutboxBatchSize: 10},
			Numbering: NumberingConfig{Strategy: "strict", RangeSize: 50},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage = "sqlite" }},
		{"min above max", func(c *Config) { c.DB.MinConns = 9 }},
		{"zero lock timeout", func(c *Config) { c.DB.LockTimeout = 0 }},
		{"zero alert interval", func(c *Config) { c.Worker.AlertPollInterval = 0 }},
		{"negative outbox interval", func(c *Config) { c.Worker.OutboxPollInterval = -time.Second }},
		{"zero batch", func(c *Config) { c.Worker.OutboxBatchSize = 0 }},
		{"unknown numbering", func(c *Config) { c.Numbering.Strategy = "random" }},
		{"zero range", func(c *Config) { c.Numbering.RangeSize = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
