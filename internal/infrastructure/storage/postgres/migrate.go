package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"hydrostock/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

// Migrate creates missing tables and indexes. Every statement is idempotent.
func Migrate(ctx context.Context, pool *Pool) error {
	logger.Info(ctx, "checking database schema")

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	logger.Info(ctx, "database schema is up to date")
	return nil
}
