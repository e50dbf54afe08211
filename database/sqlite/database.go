package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/sigv4auth/database/internal"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db    *sql.DB
	table string
}

// Connect opens a SQLite database holding access keys in table.
func Connect(ctx context.Context, dsn, table string) (*database, error) {
	if err := internal.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// Every connection to an in-memory database sees its own empty database.
	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	}

	return &database{
		db:    db,
		table: table,
	}, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.table); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.table)
}

// GetRepo returns the key repository backed by this database.
func (d *database) GetRepo() *Repo {
	return &Repo{db: d.db, tableName: d.table}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
