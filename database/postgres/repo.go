// Package postgres implements a SigV4 access key store using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/sigv4auth/database/internal"
	"github.com/sagarc03/sigv4auth/keybackend"
)

// Repo stores access keys in a PostgreSQL table.
type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

var _ keybackend.KeyRepo = (*Repo)(nil)

// NewRepo creates a repo over an existing pool.
func NewRepo(pool *pgxpool.Pool, table string) (*Repo, error) {
	if err := internal.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: table}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

// Lookup returns the secret key bound to accessKey.
func (r *Repo) Lookup(ctx context.Context, accessKey string) (string, error) {
	query := fmt.Sprintf(`SELECT secret_key FROM %s WHERE access_key = $1`, r.table())

	var secretKey string
	err := r.pool.QueryRow(ctx, query, accessKey).Scan(&secretKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("lookup: %w", keybackend.ErrKeyNotFound)
		}
		return "", fmt.Errorf("lookup: %w", err)
	}

	return secretKey, nil
}

// Put stores or replaces the secret bound to accessKey.
func (r *Repo) Put(ctx context.Context, accessKey, secretKey string) (keybackend.KeyInfo, error) {
	if accessKey == "" || secretKey == "" {
		return keybackend.KeyInfo{}, errors.New("put: access key and secret key are required")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (access_key, secret_key)
		VALUES ($1, $2)
		ON CONFLICT (access_key) DO UPDATE
		SET secret_key = EXCLUDED.secret_key,
			updated_at = NOW()
		RETURNING id, access_key, created_at, updated_at
	`, r.table())

	var info keybackend.KeyInfo
	err := r.pool.QueryRow(ctx, query, accessKey, secretKey).Scan(
		&info.ID, &info.AccessKey, &info.CreatedAt, &info.UpdatedAt,
	)
	if err != nil {
		return keybackend.KeyInfo{}, fmt.Errorf("put: %w", err)
	}

	return info, nil
}

// Delete removes accessKey.
func (r *Repo) Delete(ctx context.Context, accessKey string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE access_key = $1`, r.table())

	tag, err := r.pool.Exec(ctx, query, accessKey)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", keybackend.ErrKeyNotFound)
	}

	return nil
}

// List returns all stored access keys ordered by access key.
func (r *Repo) List(ctx context.Context) ([]keybackend.KeyInfo, error) {
	query := fmt.Sprintf(`
		SELECT id, access_key, created_at, updated_at
		FROM %s
		ORDER BY access_key
	`, r.table())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var keys []keybackend.KeyInfo
	for rows.Next() {
		var info keybackend.KeyInfo
		if err := rows.Scan(&info.ID, &info.AccessKey, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		keys = append(keys, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows error: %w", err)
	}

	return keys, nil
}
