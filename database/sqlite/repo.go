// Package sqlite implements a SigV4 access key store using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/sigv4auth/keybackend"
)

// Repo stores access keys in a SQLite table.
type Repo struct {
	db        *sql.DB
	tableName string
}

var _ keybackend.KeyRepo = (*Repo)(nil)

// Lookup returns the secret key bound to accessKey.
func (r *Repo) Lookup(ctx context.Context, accessKey string) (string, error) {
	query := fmt.Sprintf(`SELECT secret_key FROM %s WHERE access_key = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	var secretKey string
	err := r.db.QueryRowContext(ctx, query, accessKey).Scan(&secretKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	now := time.Now().UTC().Format(time.RFC3339Nano)

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, access_key, secret_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (access_key) DO UPDATE
		SET secret_key = excluded.secret_key, updated_at = excluded.updated_at
		RETURNING id, access_key, created_at, updated_at`, quoteIdentifier(r.tableName))

	var idStr, createdAt, updatedAt string
	var info keybackend.KeyInfo

	err := r.db.QueryRowContext(ctx, query, uuid.New().String(), accessKey, secretKey, now, now).Scan(
		&idStr, &info.AccessKey, &createdAt, &updatedAt,
	)
	if err != nil {
		return keybackend.KeyInfo{}, fmt.Errorf("put: %w", err)
	}

	if err := scanInfo(&info, idStr, createdAt, updatedAt); err != nil {
		return keybackend.KeyInfo{}, fmt.Errorf("put: %w", err)
	}

	return info, nil
}

// Delete removes accessKey.
func (r *Repo) Delete(ctx context.Context, accessKey string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE access_key = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	res, err := r.db.ExecContext(ctx, query, accessKey)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete: %w", keybackend.ErrKeyNotFound)
	}

	return nil
}

// List returns all stored access keys ordered by access key.
func (r *Repo) List(ctx context.Context) ([]keybackend.KeyInfo, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, access_key, created_at, updated_at FROM %s ORDER BY access_key`,
		quoteIdentifier(r.tableName))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []keybackend.KeyInfo
	for rows.Next() {
		var idStr, createdAt, updatedAt string
		var info keybackend.KeyInfo

		if err := rows.Scan(&idStr, &info.AccessKey, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		if err := scanInfo(&info, idStr, createdAt, updatedAt); err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		keys = append(keys, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows error: %w", err)
	}

	return keys, nil
}

func scanInfo(info *keybackend.KeyInfo, idStr, createdAt, updatedAt string) error {
	var err error

	info.ID, err = uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("parse uuid: %w", err)
	}

	info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}

	info.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}

	return nil
}
