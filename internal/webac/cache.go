// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Decider is the capability the Access Enforcement Filter (C8) depends on:
// either an AuthorizationCache or a NoopAuthorizationCache satisfies it. The
// cacheHit return lets the filter attribute decision latency and the
// cache-hit counter to what actually happened, rather than guessing.
type Decider interface {
	AccessModes(ctx context.Context, target IRI, session Session) (modes ModeSet, cacheHit bool, err error)
}

// CacheKey identifies a cached decision by the triple in §4.5's contract:
// target, effective agent, and an optional delegator.
type CacheKey struct {
	Target    IRI
	Agent     IRI
	Delegator IRI
}

// cacheEntry is one node in the LRU cache's doubly-linked list, generalized
// from internal/cache/lru.go's LRUEntry: the value here is a ModeSet rather
// than a time.Time.
type cacheEntry struct {
	key       CacheKey
	value     ModeSet
	prev      *cacheEntry
	next      *cacheEntry
	expiresAt time.Time
}

// AuthorizationCache is the C6 single-flight, size/TTL-bounded cache over
// (target, agent, delegator) -> modes. It wraps an Evaluator so callers
// never observe the cache directly; concurrent misses for the same key
// share one underlying AccessModes call via singleflight.Group, matching
// the "second caller observes the first caller's result" requirement.
type AuthorizationCache struct {
	eval *Evaluator

	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[CacheKey]*cacheEntry
	head     *cacheEntry
	tail     *cacheEntry

	group singleflight.Group

	hits   int64
	misses int64
}

// NewAuthorizationCache builds a cache of the given capacity and TTL in
// front of eval. A non-positive capacity or ttl falls back to the teacher's
// lru.go defaults (10000 entries, 5 minutes) rescaled to this spec's much
// shorter recommended TTL of a few seconds.
func NewAuthorizationCache(eval *Evaluator, capacity int, ttl time.Duration) *AuthorizationCache {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	c := &AuthorizationCache{
		eval:     eval,
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[CacheKey]*cacheEntry, capacity),
		head:     &cacheEntry{},
		tail:     &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// AccessModes returns the cached decision for key if fresh, otherwise
// computes it through the wrapped Evaluator. A context cancellation during
// a miss never populates the cache with a partial result: the singleflight
// call either returns a real ModeSet, which is cached, or an error, which
// is propagated to every waiter without being stored. When a concurrent
// miss for the same key is served by a computation already in flight,
// RecordSingleflightShared is incremented (C6); the caller still sees a
// cache miss, since the evaluator genuinely ran once for this request.
func (c *AuthorizationCache) AccessModes(ctx context.Context, target IRI, session Session) (ModeSet, bool, error) {
	key := CacheKey{Target: target, Agent: session.Agent, Delegator: session.DelegatedBy}
	if !session.HasDelegator {
		key.Delegator = ""
	}

	if modes, ok := c.get(key); ok {
		return modes, true, nil
	}

	sfKey := string(key.Target) + "\x00" + string(key.Agent) + "\x00" + string(key.Delegator)
	led := false
	v, err, shared := c.group.Do(sfKey, func() (interface{}, error) {
		led = true
		modes, err := c.eval.AccessModes(ctx, target, session)
		if err != nil {
			return ModeSet(0), err
		}
		c.add(key, modes)
		return modes, nil
	})
	if shared && !led {
		RecordSingleflightShared()
	}
	if err != nil {
		return 0, false, err
	}
	return v.(ModeSet), false, nil
}

func (c *AuthorizationCache) get(key CacheKey) (ModeSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	if !exists {
		c.misses++
		return 0, false
	}
	if time.Now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.misses++
		return 0, false
	}
	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

func (c *AuthorizationCache) add(key CacheKey, value ModeSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if entry, exists := c.items[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// InvalidateTree drops every cached entry whose target lies at or below
// root, per §4.5's "MAY evict eagerly on write operations" allowance.
func (c *AuthorizationCache) InvalidateTree(root IRI) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if isUnderOrEqual(entry.key.Target, root) {
			c.removeEntry(entry)
		}
		entry = prev
	}
}

func isUnderOrEqual(target, root IRI) bool {
	if target == root {
		return true
	}
	ts, rs := string(target), string(root)
	if len(ts) <= len(rs) {
		return false
	}
	return ts[:len(rs)] == rs
}

// Stats returns cache hit/miss counters for metrics wiring.
func (c *AuthorizationCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Len returns the current number of live entries, including ones that have
// expired but not yet been reaped.
func (c *AuthorizationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanupExpired sweeps expired entries, intended to run periodically from
// a supervised background worker. It returns the number of entries removed.
func (c *AuthorizationCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	return removed
}

func (c *AuthorizationCache) addToFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *AuthorizationCache) moveToFront(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *AuthorizationCache) removeEntry(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *AuthorizationCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}

// NoopAuthorizationCache delegates straight to the wrapped Evaluator, for
// when caching is disabled via webac.cache.size == 0.
type NoopAuthorizationCache struct {
	eval *Evaluator
}

// NewNoopAuthorizationCache builds a pass-through cache over eval.
func NewNoopAuthorizationCache(eval *Evaluator) *NoopAuthorizationCache {
	return &NoopAuthorizationCache{eval: eval}
}

// AccessModes forwards directly to the Evaluator with no memoization; it
// never reports a cache hit.
func (c *NoopAuthorizationCache) AccessModes(ctx context.Context, target IRI, session Session) (ModeSet, bool, error) {
	modes, err := c.eval.AccessModes(ctx, target, session)
	return modes, false, err
}
