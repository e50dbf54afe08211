package keybackend

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagarc03/sigv4auth"
)

// Chain consults several stores in order and returns the first secret found.
type Chain []sigv4auth.SecretStore

// Lookup returns the secret from the first store that knows accessKey.
// A store error other than ErrKeyNotFound stops the search.
func (c Chain) Lookup(ctx context.Context, accessKey string) (string, error) {
	for i, store := range c {
		secretKey, err := store.Lookup(ctx, accessKey)
		if err == nil {
			return secretKey, nil
		}
		if !errors.Is(err, ErrKeyNotFound) {
			return "", fmt.Errorf("store %d: %w", i, err)
		}
	}
	return "", fmt.Errorf("access key not found: %w", ErrKeyNotFound)
}
