package sigv4auth

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// placeholderSecret stands in for the secret of an unknown access key so that
// unknown keys go through the same derivation and comparison as known ones.
const placeholderSecret = "sigv4auth/placeholder/0000000000000000000000"

// SecretStore resolves an access key to the secret key bound to it.
//
// Lookup must return an error wrapping ErrUnknownAccessKey when no secret is
// bound to accessKey. Any other error is treated as the store being unavailable.
type SecretStore interface {
	Lookup(ctx context.Context, accessKey string) (secretKey string, err error)
}

// SecretStoreFunc adapts a plain function to SecretStore.
type SecretStoreFunc func(ctx context.Context, accessKey string) (string, error)

// Lookup calls f(ctx, accessKey).
func (f SecretStoreFunc) Lookup(ctx context.Context, accessKey string) (string, error) {
	return f(ctx, accessKey)
}

// Outcome classifies a single validation for operators.
type Outcome string

const (
	OutcomeValid               Outcome = "valid"
	OutcomeMalformedScope      Outcome = "malformed_scope"
	OutcomeUnknownAccessKey    Outcome = "unknown_access_key"
	OutcomeSignatureMismatch   Outcome = "signature_mismatch"
	OutcomeResolverUnavailable Outcome = "resolver_unavailable"
)

// OutcomeOf maps a Verify error to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeValid
	case errors.Is(err, ErrResolverUnavailable):
		return OutcomeResolverUnavailable
	case errors.Is(err, ErrMalformedScope):
		return OutcomeMalformedScope
	case errors.Is(err, ErrUnknownAccessKey):
		return OutcomeUnknownAccessKey
	default:
		return OutcomeSignatureMismatch
	}
}

// Observer receives the outcome of every validation.
type Observer interface {
	ObserveValidation(outcome Outcome, elapsed time.Duration)
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for rejection diagnostics.
// Secrets and signatures are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithObserver registers an observer for validation outcomes.
func WithObserver(o Observer) Option {
	return func(v *Validator) {
		v.observer = o
	}
}

// Validator checks SigV4 signatures over pre-built strings-to-sign.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	store    SecretStore
	logger   *slog.Logger
	observer Observer
}

// NewValidator creates a validator that resolves secrets through store.
func NewValidator(store SecretStore, opts ...Option) *Validator {
	v := &Validator{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateRequest reports whether signature is the SigV4 signature of
// stringToSign under the secret bound to accessKey.
//
// A malformed scope, an unknown access key and a wrong signature all return
// (false, nil). An error is returned only when the secret store fails, and it
// wraps ErrResolverUnavailable.
//
// Example:
//
//	v := sigv4auth.NewValidator(store)
//	ok, err := v.ValidateRequest(ctx, stringToSign, signature, accessKey)
//	if err != nil {
//	    // cannot authenticate anyone right now
//	}
func (v *Validator) ValidateRequest(ctx context.Context, stringToSign, signature, accessKey string) (bool, error) {
	err := v.Verify(ctx, stringToSign, signature, accessKey)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrResolverUnavailable):
		return false, err
	default:
		return false, nil
	}
}

// Verify is ValidateRequest with the rejection reason kept. The returned error
// wraps one of ErrMalformedScope, ErrUnknownAccessKey, ErrSignatureMismatch or
// ErrResolverUnavailable. The distinction is meant for in-process diagnostics
// and must not be passed on to clients.
func (v *Validator) Verify(ctx context.Context, stringToSign, signature, accessKey string) error {
	start := time.Now()
	err := v.verify(ctx, stringToSign, signature, accessKey)
	v.report(accessKey, err, time.Since(start))
	return err
}

func (v *Validator) verify(ctx context.Context, stringToSign, signature, accessKey string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrResolverUnavailable, err)
	}

	known := true
	secretKey, err := v.store.Lookup(ctx, accessKey)
	if err != nil {
		if !errors.Is(err, ErrUnknownAccessKey) {
			return fmt.Errorf("lookup access key: %w: %w", ErrResolverUnavailable, err)
		}
		known = false
		secretKey = placeholderSecret
	}

	scope, err := ParseScope(stringToSign)
	if err != nil {
		return err
	}

	signingKey := DeriveSigningKey(secretKey, scope)
	expected := ComputeSignature(signingKey, stringToSign)
	clear(signingKey)

	match := hmac.Equal([]byte(expected), []byte(signature))

	if !known {
		return fmt.Errorf("lookup access key: %w", ErrUnknownAccessKey)
	}
	if !match {
		return ErrSignatureMismatch
	}
	return nil
}

func (v *Validator) report(accessKey string, err error, elapsed time.Duration) {
	outcome := OutcomeOf(err)

	if v.observer != nil {
		v.observer.ObserveValidation(outcome, elapsed)
	}

	switch outcome {
	case OutcomeValid:
	case OutcomeResolverUnavailable:
		v.logger.Warn("signature validation failed", "access_key", accessKey, "err", err)
	default:
		v.logger.Debug("signature rejected", "access_key", accessKey, "outcome", string(outcome))
	}
}
