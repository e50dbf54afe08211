package keybackend

import "github.com/sagarc03/sigv4auth"

// ErrKeyNotFound is returned when the access key does not exist in the store.
// It is the validator's ErrUnknownAccessKey so that stores and validator agree.
var ErrKeyNotFound = sigv4auth.ErrUnknownAccessKey
