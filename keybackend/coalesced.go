package keybackend

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sagarc03/sigv4auth"
)

// DefaultLookupTimeout bounds a shared call to the underlying store.
const DefaultLookupTimeout = 5 * time.Second

// Coalesced wraps a SecretStore so that concurrent lookups of the same access
// key share a single call to the underlying store. Results are not cached; once
// the shared call returns, the next lookup goes to the store again.
type Coalesced struct {
	store   sigv4auth.SecretStore
	timeout time.Duration
	group   singleflight.Group
}

// CoalescedOption configures a Coalesced store.
type CoalescedOption func(*Coalesced)

// WithLookupTimeout sets the deadline given to each shared store call.
// Non-positive values are ignored.
func WithLookupTimeout(d time.Duration) CoalescedOption {
	return func(c *Coalesced) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCoalesced wraps store.
func NewCoalesced(store sigv4auth.SecretStore, opts ...CoalescedOption) *Coalesced {
	c := &Coalesced{store: store, timeout: DefaultLookupTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves accessKey through the wrapped store. The shared call keeps
// the first caller's values but not its cancellation, and is bounded by the
// lookup timeout. A caller whose context ends first returns at once and drops
// the flight, so the next lookup for that key starts a fresh store call.
func (c *Coalesced) Lookup(ctx context.Context, accessKey string) (string, error) {
	shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	ch := c.group.DoChan(accessKey, func() (any, error) {
		defer cancel()
		return c.store.Lookup(shared, accessKey)
	})

	select {
	case <-ctx.Done():
		c.group.Forget(accessKey)
		return "", ctx.Err()
	case res := <-ch:
		// Joiners never run the function, so release their unused context.
		cancel()
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
