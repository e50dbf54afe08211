package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/sigv4auth/database/internal"
	"github.com/sagarc03/sigv4auth/database/postgres"
	"github.com/sagarc03/sigv4auth/database/sqlite"
	"github.com/sagarc03/sigv4auth/keybackend"
)

// DefaultTable is the access key table used when Config.Table is empty.
const DefaultTable = internal.DefaultTable

// Config holds the configuration for connecting to an access key backend.
type Config struct {
	// Enabled makes serve consult the database in addition to configured keys
	Enabled bool `mapstructure:"enabled"`
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// Table is the name of the access key table
	Table string `mapstructure:"table"`
	// AutoMigrate creates the table on connect when it does not exist
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type backend interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Close() error
}

// Connect establishes a connection to the configured database backend,
// optionally runs migrations, validates the schema, and returns a KeyRepo.
// The returned cleanup function should be called to close the connection.
func Connect(ctx context.Context, cfg Config) (keybackend.KeyRepo, func(), error) {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	var (
		db   backend
		repo keybackend.KeyRepo
	)

	switch cfg.Type {
	case "sqlite":
		d, err := sqlite.Connect(ctx, cfg.DSN, table)
		if err != nil {
			return nil, nil, err
		}
		db, repo = d, d.GetRepo()
	case "postgres":
		d, err := postgres.Connect(ctx, cfg.DSN, table)
		if err != nil {
			return nil, nil, err
		}
		db, repo = d, d.GetRepo()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err := prepare(ctx, db, cfg.AutoMigrate); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%s: %w", cfg.Type, err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return repo, cleanup, nil
}

func prepare(ctx context.Context, db backend, migrate bool) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	if err := db.Validate(ctx); err != nil {
		return err
	}

	return nil
}
