package sigv4auth_test

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/sigv4auth"
	"github.com/sagarc03/sigv4auth/keybackend"
)

const (
	iamAccessKey = "AKIDEXAMPLE"
	s3AccessKey  = "AKIAS3EXAMPLE"
)

func newTestValidator(opts ...sigv4auth.Option) *sigv4auth.Validator {
	store := keybackend.NewMapSecretStore(map[string]string{
		iamAccessKey: iamSecret,
		s3AccessKey:  s3Secret,
	})
	return sigv4auth.NewValidator(store, opts...)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []sigv4auth.Outcome
}

func (o *recordingObserver) ObserveValidation(outcome sigv4auth.Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func TestValidator_ValidateRequest(t *testing.T) {
	validator := newTestValidator()

	tests := []struct {
		name         string
		stringToSign string
		signature    string
		accessKey    string
		want         bool
	}{
		{
			name:         "iam vector",
			stringToSign: iamStringToSign,
			signature:    iamSignature,
			accessKey:    iamAccessKey,
			want:         true,
		},
		{
			name:         "s3 vector",
			stringToSign: s3StringToSign,
			signature:    s3Signature,
			accessKey:    s3AccessKey,
			want:         true,
		},
		{
			name:         "last hex digit changed",
			stringToSign: iamStringToSign,
			signature:    "5d672d79c15b13162d9279b0855cfba6789a8edb4c82c400e06b5924a6f2b5d8",
			accessKey:    iamAccessKey,
			want:         false,
		},
		{
			name:         "signature bound to another key",
			stringToSign: iamStringToSign,
			signature:    iamSignature,
			accessKey:    s3AccessKey,
			want:         false,
		},
		{
			name:         "unknown access key",
			stringToSign: iamStringToSign,
			signature:    iamSignature,
			accessKey:    "AKIAUNKNOWN",
			want:         false,
		},
		{
			name:         "uppercase hex is not accepted",
			stringToSign: iamStringToSign,
			signature:    strings.ToUpper(iamSignature),
			accessKey:    iamAccessKey,
			want:         false,
		},
		{
			name:         "truncated signature",
			stringToSign: iamStringToSign,
			signature:    iamSignature[:63],
			accessKey:    iamAccessKey,
			want:         false,
		},
		{
			name:         "empty signature",
			stringToSign: iamStringToSign,
			signature:    "",
			accessKey:    iamAccessKey,
			want:         false,
		},
		{
			name:         "payload hash changed",
			stringToSign: strings.Replace(iamStringToSign, "f536975d", "f536975e", 1),
			signature:    iamSignature,
			accessKey:    iamAccessKey,
			want:         false,
		},
		{
			name:         "three scope segments",
			stringToSign: "AWS4-HMAC-SHA256\n20150830T123600Z\n20150830/us-east-1/aws4_request\nabc",
			signature:    iamSignature,
			accessKey:    iamAccessKey,
			want:         false,
		},
		{
			name:         "wrong terminator",
			stringToSign: "AWS4-HMAC-SHA256\n20150830T123600Z\n20150830/us-east-1/iam/aws5_request\nabc",
			signature:    iamSignature,
			accessKey:    iamAccessKey,
			want:         false,
		},
		{
			name:         "empty string to sign",
			stringToSign: "",
			signature:    iamSignature,
			accessKey:    iamAccessKey,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateRequest(context.Background(), tt.stringToSign, tt.signature, tt.accessKey)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidator_SingleBitMutations(t *testing.T) {
	validator := newTestValidator()
	ctx := context.Background()

	raw, err := hex.DecodeString(iamSignature)
	require.NoError(t, err)

	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(raw))
			copy(mutated, raw)
			mutated[i] ^= 1 << bit

			ok, err := validator.ValidateRequest(ctx, iamStringToSign, hex.EncodeToString(mutated), iamAccessKey)
			require.NoError(t, err)
			assert.False(t, ok, "byte %d bit %d", i, bit)
		}
	}
}

func TestValidator_Deterministic(t *testing.T) {
	validator := newTestValidator()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		ok, err := validator.ValidateRequest(ctx, iamStringToSign, iamSignature, iamAccessKey)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = validator.ValidateRequest(ctx, iamStringToSign, s3Signature, iamAccessKey)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestValidator_ScopeChangeInvalidatesSignature(t *testing.T) {
	validator := newTestValidator()
	ctx := context.Background()

	scopes := []string{
		"20150831/us-east-1/iam/aws4_request",
		"20150830/us-west-2/iam/aws4_request",
		"20150830/us-east-1/s3/aws4_request",
	}

	for _, scope := range scopes {
		t.Run(scope, func(t *testing.T) {
			stringToSign := strings.Replace(iamStringToSign, "20150830/us-east-1/iam/aws4_request", scope, 1)

			ok, err := validator.ValidateRequest(ctx, stringToSign, iamSignature, iamAccessKey)
			require.NoError(t, err)
			assert.False(t, ok)

			resigned, err := sigv4auth.Sign(iamSecret, stringToSign)
			require.NoError(t, err)
			assert.NotEqual(t, iamSignature, resigned)

			ok, err = validator.ValidateRequest(ctx, stringToSign, resigned, iamAccessKey)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestValidator_Verify_Reasons(t *testing.T) {
	validator := newTestValidator()
	ctx := context.Background()

	tests := []struct {
		name         string
		stringToSign string
		signature    string
		accessKey    string
		wantErr      error
	}{
		{
			name:         "valid",
			stringToSign: iamStringToSign,
			signature:    iamSignature,
			accessKey:    iamAccessKey,
		},
		{
			name:         "mismatch",
			stringToSign: iamStringToSign,
			signature:    s3Signature,
			accessKey:    iamAccessKey,
			wantErr:      sigv4auth.ErrSignatureMismatch,
		},
		{
			name:         "unknown key",
			stringToSign: iamStringToSign,
			signature:    iamSignature,
			accessKey:    "NOPE",
			wantErr:      sigv4auth.ErrUnknownAccessKey,
		},
		{
			name:         "malformed scope",
			stringToSign: "AWS4-HMAC-SHA256\n20150830T123600Z",
			signature:    iamSignature,
			accessKey:    iamAccessKey,
			wantErr:      sigv4auth.ErrMalformedScope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Verify(ctx, tt.stringToSign, tt.signature, tt.accessKey)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidator_ResolverUnavailable(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := sigv4auth.SecretStoreFunc(func(ctx context.Context, accessKey string) (string, error) {
		return "", storeErr
	})
	validator := sigv4auth.NewValidator(store)

	ok, err := validator.ValidateRequest(context.Background(), iamStringToSign, iamSignature, iamAccessKey)

	assert.False(t, ok)
	require.ErrorIs(t, err, sigv4auth.ErrResolverUnavailable)
	assert.ErrorIs(t, err, storeErr)
}

func TestValidator_CancelledContext(t *testing.T) {
	called := false
	store := sigv4auth.SecretStoreFunc(func(ctx context.Context, accessKey string) (string, error) {
		called = true
		return iamSecret, nil
	})
	validator := sigv4auth.NewValidator(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := validator.ValidateRequest(ctx, iamStringToSign, iamSignature, iamAccessKey)

	assert.False(t, ok)
	require.ErrorIs(t, err, sigv4auth.ErrResolverUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called, "store should not be consulted after cancellation")
}

func TestValidator_StoreReceivesContext(t *testing.T) {
	type ctxKey struct{}
	store := sigv4auth.SecretStoreFunc(func(ctx context.Context, accessKey string) (string, error) {
		if ctx.Value(ctxKey{}) != "request-42" {
			return "", errors.New("context not propagated")
		}
		return iamSecret, nil
	})
	validator := sigv4auth.NewValidator(store)

	ctx := context.WithValue(context.Background(), ctxKey{}, "request-42")
	ok, err := validator.ValidateRequest(ctx, iamStringToSign, iamSignature, iamAccessKey)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidator_Observer(t *testing.T) {
	observer := &recordingObserver{}
	validator := newTestValidator(sigv4auth.WithObserver(observer))
	ctx := context.Background()

	_, _ = validator.ValidateRequest(ctx, iamStringToSign, iamSignature, iamAccessKey)
	_, _ = validator.ValidateRequest(ctx, iamStringToSign, s3Signature, iamAccessKey)
	_, _ = validator.ValidateRequest(ctx, iamStringToSign, iamSignature, "NOPE")
	_, _ = validator.ValidateRequest(ctx, "garbage", iamSignature, iamAccessKey)

	assert.Equal(t, []sigv4auth.Outcome{
		sigv4auth.OutcomeValid,
		sigv4auth.OutcomeSignatureMismatch,
		sigv4auth.OutcomeUnknownAccessKey,
		sigv4auth.OutcomeMalformedScope,
	}, observer.outcomes)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, sigv4auth.OutcomeValid, sigv4auth.OutcomeOf(nil))
	assert.Equal(t, sigv4auth.OutcomeMalformedScope, sigv4auth.OutcomeOf(fmt.Errorf("x: %w", sigv4auth.ErrMalformedScope)))
	assert.Equal(t, sigv4auth.OutcomeUnknownAccessKey, sigv4auth.OutcomeOf(fmt.Errorf("x: %w", sigv4auth.ErrUnknownAccessKey)))
	assert.Equal(t, sigv4auth.OutcomeSignatureMismatch, sigv4auth.OutcomeOf(sigv4auth.ErrSignatureMismatch))
	assert.Equal(t, sigv4auth.OutcomeResolverUnavailable, sigv4auth.OutcomeOf(fmt.Errorf("x: %w", sigv4auth.ErrResolverUnavailable)))
}

func TestValidator_Concurrent(t *testing.T) {
	validator := newTestValidator()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				ok, err := validator.ValidateRequest(ctx, iamStringToSign, iamSignature, iamAccessKey)
				assert.NoError(t, err)
				assert.True(t, ok)
			} else {
				ok, err := validator.ValidateRequest(ctx, s3StringToSign, s3Signature, s3AccessKey)
				assert.NoError(t, err)
				assert.True(t, ok)
			}
		}(i)
	}
	wg.Wait()
}
