package sigv4auth

import "errors"

var (
	// ErrMalformedScope is returned when the credential scope line of a
	// string-to-sign cannot be parsed
	ErrMalformedScope = errors.New("malformed credential scope")
	// ErrUnknownAccessKey is returned by a SecretStore when no secret is bound to the access key
	ErrUnknownAccessKey = errors.New("unknown access key")
	// ErrResolverUnavailable is returned when the SecretStore itself fails
	ErrResolverUnavailable = errors.New("secret store unavailable")
	// ErrSignatureMismatch is returned when the computed signature differs from the candidate
	ErrSignatureMismatch = errors.New("signature mismatch")
)
