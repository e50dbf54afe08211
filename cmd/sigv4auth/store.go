package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sagarc03/sigv4auth"
	"github.com/sagarc03/sigv4auth/config"
	"github.com/sagarc03/sigv4auth/database"
	"github.com/sagarc03/sigv4auth/keybackend"
)

// openSecretStore builds the store used for validation: configured keys first,
// then the database when enabled, with concurrent lookups coalesced.
func openSecretStore(ctx context.Context, cfg *config.Config) (sigv4auth.SecretStore, func(), error) {
	static, err := keybackend.NewSecretStore(cfg.Keys)
	if err != nil {
		return nil, nil, fmt.Errorf("load keys: %w", err)
	}

	chain := keybackend.Chain{static}
	cleanup := func() {}

	if cfg.Database.Enabled {
		repo, closeDB, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		slog.Info("connected to database", "type", cfg.Database.Type)

		chain = append(chain, repo)
		cleanup = closeDB
	}

	lookupTimeout := time.Duration(cfg.Server.LookupTimeout) * time.Second
	return keybackend.NewCoalesced(chain, keybackend.WithLookupTimeout(lookupTimeout)), cleanup, nil
}

// openKeyRepo connects to the configured database for key management.
func openKeyRepo(ctx context.Context, cfg database.Config) (keybackend.KeyRepo, func(), error) {
	repo, closeDB, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return repo, closeDB, nil
}
