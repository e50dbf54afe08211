package keybackend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/sigv4auth"
)

// KeyInfo describes a stored access key. It never carries the secret.
type KeyInfo struct {
	ID        uuid.UUID
	AccessKey string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KeyRepo is a SecretStore whose keys can be managed.
type KeyRepo interface {
	sigv4auth.SecretStore
	// Put stores or replaces the secret bound to accessKey.
	Put(ctx context.Context, accessKey, secretKey string) (KeyInfo, error)
	// Delete removes accessKey. It returns ErrKeyNotFound if the key does not exist.
	Delete(ctx context.Context, accessKey string) error
	// List returns all stored access keys ordered by access key.
	List(ctx context.Context) ([]KeyInfo, error)
}
