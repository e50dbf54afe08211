// Package keybackend provides SecretStore implementations for key retrieval.
package keybackend

import (
	"context"
	"fmt"
)

// MapSecretStore retrieves keys from an in-memory map.
// Suitable for configuration file-based key storage.
type MapSecretStore struct {
	keys map[string]string
}

// NewMapSecretStore creates a new map-based secret store with the given access key to secret key mapping.
// The map is copied; later changes to keys are not observed.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	copied := make(map[string]string, len(keys))
	for k, v := range keys {
		copied[k] = v
	}
	return &MapSecretStore{keys: copied}
}

// Lookup retrieves the secret key for the given access key from the map.
// It fails with the context's error once ctx is done.
func (s *MapSecretStore) Lookup(ctx context.Context, accessKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("access key not found: %w", ErrKeyNotFound)
	}
	return secretKey, nil
}

// Len returns the number of keys held by the store.
func (s *MapSecretStore) Len() int {
	return len(s.keys)
}
