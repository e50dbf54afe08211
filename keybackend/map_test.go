package keybackend_test

import (
	"context"
	"testing"

	"github.com/sagarc03/sigv4auth"
	"github.com/sagarc03/sigv4auth/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSecretStore_Lookup(t *testing.T) {
	tests := []struct {
		name      string
		keys      map[string]string
		accessKey string
		wantKey   string
		wantErr   error
	}{
		{
			name: "returns secret key when access key exists",
			keys: map[string]string{
				"access1": "secret1",
				"access2": "secret2",
			},
			accessKey: "access1",
			wantKey:   "secret1",
			wantErr:   nil,
		},
		{
			name: "returns ErrKeyNotFound when access key does not exist",
			keys: map[string]string{
				"access1": "secret1",
			},
			accessKey: "nonexistent",
			wantKey:   "",
			wantErr:   keybackend.ErrKeyNotFound,
		},
		{
			name:      "returns ErrKeyNotFound for empty store",
			keys:      map[string]string{},
			accessKey: "anykey",
			wantKey:   "",
			wantErr:   keybackend.ErrKeyNotFound,
		},
		{
			name:      "returns ErrKeyNotFound for nil store",
			keys:      nil,
			accessKey: "anykey",
			wantKey:   "",
			wantErr:   keybackend.ErrKeyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := keybackend.NewMapSecretStore(tt.keys)
			gotKey, err := store.Lookup(context.Background(), tt.accessKey)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, gotKey)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantKey, gotKey)
			}
		})
	}
}

func TestMapSecretStore_NotFoundIsUnknownAccessKey(t *testing.T) {
	store := keybackend.NewMapSecretStore(map[string]string{"access1": "secret1"})

	_, err := store.Lookup(context.Background(), "missing")

	require.ErrorIs(t, err, sigv4auth.ErrUnknownAccessKey)
	assert.NotContains(t, err.Error(), "secret1")
}

func TestMapSecretStore_CopiesInput(t *testing.T) {
	keys := map[string]string{"access1": "secret1"}
	store := keybackend.NewMapSecretStore(keys)

	keys["access1"] = "changed"
	keys["access2"] = "secret2"

	got, err := store.Lookup(context.Background(), "access1")
	require.NoError(t, err)
	assert.Equal(t, "secret1", got)
	assert.Equal(t, 1, store.Len())

	_, err = store.Lookup(context.Background(), "access2")
	assert.ErrorIs(t, err, keybackend.ErrKeyNotFound)
}
