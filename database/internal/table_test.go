package internal_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/sigv4auth/database/internal"
)

func TestIsValidTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table string
		want  bool
	}{
		{name: "default", table: internal.DefaultTable, want: true},
		{name: "leading underscore", table: "_keys", want: true},
		{name: "digits", table: "keys_2", want: true},
		{name: "max length", table: strings.Repeat("a", 63), want: true},
		{name: "too long", table: strings.Repeat("a", 64), want: false},
		{name: "empty", table: "", want: false},
		{name: "uppercase", table: "Keys", want: false},
		{name: "leading digit", table: "1keys", want: false},
		{name: "hyphen", table: "access-keys", want: false},
		{name: "injection", table: `keys"; DROP TABLE x; --`, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, internal.IsValidTableName(tt.table))
		})
	}
}

func TestValidateTableName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, internal.ValidateTableName("keys"))
	assert.ErrorContains(t, internal.ValidateTableName(""), "cannot be empty")
	assert.ErrorContains(t, internal.ValidateTableName("Bad"), "invalid table name")
}
