// Package database provides SQL-backed access key stores.
//
// The package supports PostgreSQL and SQLite and handles connection
// management, migrations, and schema validation.
//
// # Supported Backends
//
//   - PostgreSQL: production backend using a pgx connection pool
//   - SQLite: lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "sigv4auth.db",
//	    Table:       "sigv4_access_keys",
//	    AutoMigrate: true,
//	}
//
//	repo, cleanup, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
//	validator := sigv4auth.NewValidator(repo)
//
// The returned repo is a keybackend.KeyRepo: a SecretStore that can also add,
// remove and list keys.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
