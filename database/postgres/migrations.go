package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the access key table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if err := createKeysTable(ctx, pool, table); err != nil {
		return fmt.Errorf("migrate up %s: %w", table, err)
	}
	return nil
}

// DropTables removes the access key table.
func DropTables(ctx context.Context, pool *pgxpool.Pool, table string) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{table}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate down %s: %w", table, err)
	}
	return nil
}

func createKeysTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			access_key TEXT NOT NULL UNIQUE,
			secret_key TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, pgx.Identifier{tableName}.Sanitize())

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create keys table: %w", err)
	}
	return nil
}
