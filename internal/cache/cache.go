// Package cache memoizes verification results by fingerprint. It bounds
// memory with LRU eviction plus a per-entry TTL, and collapses concurrent
// identical requests into a single backend invocation whose result every
// waiting caller shares.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

const (
	DefaultMaxEntries = 1024
	DefaultTTL        = 24 * time.Hour
)

// Cache is safe for concurrent use. Unrelated fingerprints never contend:
// the single-flight group serializes per key only, and no lock is held
// while a computation runs.
type Cache struct {
	lru   *expirable.LRU[axiom.Fingerprint, *axiom.VerificationResult]
	group singleflight.Group
}

// New creates a cache holding at most maxEntries results for at most ttl
// each. Zero values select the defaults.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		lru: expirable.NewLRU[axiom.Fingerprint, *axiom.VerificationResult](maxEntries, nil, ttl),
	}
}

// Get returns the cached result for fp, if any.
func (c *Cache) Get(fp axiom.Fingerprint) (*axiom.VerificationResult, bool) {
	return c.lru.Get(fp)
}

// Put stores a result under fp. Entries are immutable: once a fingerprint
// is written it is never overwritten, only evicted.
func (c *Cache) Put(fp axiom.Fingerprint, result *axiom.VerificationResult) {
	if _, exists := c.lru.Get(fp); exists {
		return
	}
	c.lru.Add(fp, result)
}

// Len reports the number of live entries.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge drops every entry.
func (c *Cache) Purge() { c.lru.Purge() }

// GetOrCompute returns the cached result for fp or runs compute exactly
// once, no matter how many callers ask concurrently; every caller receives
// the one eventual result. The result is cached only when cacheable reports
// true for it, so non-deterministic verdicts are not pinned.
//
// A caller whose ctx ends while waiting gets its context error immediately.
// The computation itself is detached from every caller's cancellation: the
// flight runs under a context that carries the initiator's values but not
// its cancel signal, so cancelling the caller that started a flight never
// fails waiters who joined it. Committed entries are never invalidated by
// cancellation.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	fp axiom.Fingerprint,
	compute func(context.Context) (*axiom.VerificationResult, error),
	cacheable func(*axiom.VerificationResult) bool,
) (*axiom.VerificationResult, error) {
	if result, ok := c.lru.Get(fp); ok {
		return result, nil
	}

	// The flight may outlive the caller that started it, so it must not
	// inherit that caller's cancel signal.
	flightCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(string(fp), func() (any, error) {
		// Double-check under the flight: another caller may have published
		// between our miss and the flight starting.
		if result, ok := c.lru.Get(fp); ok {
			return result, nil
		}
		result, err := compute(flightCtx)
		if err != nil {
			return nil, err
		}
		if cacheable == nil || cacheable(result) {
			c.Put(fp, result)
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// Failed flights must not poison later attempts.
			c.group.Forget(string(fp))
			return nil, res.Err
		}
		return res.Val.(*axiom.VerificationResult), nil
	}
}
