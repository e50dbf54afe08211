// Package internal holds helpers shared by the SQL key stores.
package internal

import (
	"fmt"
	"regexp"
)

// DefaultTable is the access key table used when none is configured.
const DefaultTable = "sigv4_access_keys"

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// ValidateTableName returns an error if name cannot be used as a table name.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !IsValidTableName(name) {
		return fmt.Errorf("invalid table name: %s", name)
	}
	return nil
}
