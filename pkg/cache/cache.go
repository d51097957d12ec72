// Package cache provides a generic time-based cache used for tracking
// session records and for external API responses.
package cache

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Item represents a cached value with expiration
type Item[V any] struct {
	Value      V
	Expiration int64
}

// Expired checks if the item has expired at the given instant
func (item Item[V]) Expired(now int64) bool {
	if item.Expiration == 0 {
		return false
	}
	return now > item.Expiration
}

// TTLCache is a thread-safe cache with time-based expiration
type TTLCache[K comparable, V any] struct {
	items           map[K]Item[V]
	mu              sync.RWMutex
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxItems        int
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
	onEvict         func(K, V)
}

// Option configures a TTLCache
type Option[K comparable, V any] func(*TTLCache[K, V])

// WithClock overrides the time source, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		c.now = now
	}
}

// WithEvictionCallback registers fn to be called for every entry removed
// because it expired or the cache was over capacity.
func WithEvictionCallback[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		c.onEvict = fn
	}
}

// NewTTLCache creates a new cache with the specified TTL and cleanup interval.
// maxItems specifies the maximum number of items before the entries closest to
// expiry are evicted; zero means unbounded.
func NewTTLCache[K comparable, V any](defaultTTL, cleanupInterval time.Duration, maxItems int, opts ...Option[K, V]) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		items:           make(map[K]Item[V]),
		defaultTTL:      defaultTTL,
		cleanupInterval: cleanupInterval,
		maxItems:        maxItems,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.startCleanupTimer()

	return c
}

// Set adds an item to the cache with the default TTL
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL adds an item to the cache with a specific TTL.
// A non-positive TTL stores the item without expiration.
func (c *TTLCache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	var expiration int64
	if ttl > 0 {
		expiration = c.now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = Item[V]{
		Value:      value,
		Expiration: expiration,
	}

	var evicted []Item[V]
	var evictedKeys []K
	if c.maxItems > 0 && len(c.items) > c.maxItems {
		evictedKeys, evicted = c.evictOldest()
	}
	c.mu.Unlock()

	c.notifyEvicted(evictedKeys, evicted)
}

// Get retrieves an item from the cache.
// Returns the value and a bool indicating if the item was found.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !found {
		return zero, false
	}

	if item.Expired(c.now().UnixNano()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it
		if current, ok := c.items[key]; ok && current.Expired(c.now().UnixNano()) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return item.Value, true
}

// Delete removes an item from the cache and reports whether it was present
// and unexpired.
func (c *TTLCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	item, found := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	return found && !item.Expired(c.now().UnixNano())
}

// Count returns the number of items in the cache, including expired items
// not yet collected.
func (c *TTLCache[K, V]) Count() int {
	c.mu.RLock()
	count := len(c.items)
	c.mu.RUnlock()
	return count
}

// Clear removes all items from the cache
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]Item[V])
	c.mu.Unlock()
}

// evictOldest removes the items closest to expiry when the cache exceeds
// maxItems. The lock must be held.
func (c *TTLCache[K, V]) evictOldest() ([]K, []Item[V]) {
	type keyExpiration struct {
		key        K
		expiration int64
	}

	itemsToRemove := len(c.items) - c.maxItems
	if itemsToRemove <= 0 {
		return nil, nil
	}

	keyExpirations := make([]keyExpiration, 0, len(c.items))
	for k, v := range c.items {
		// Items without expiration have the lowest eviction priority
		exp := v.Expiration
		if exp == 0 {
			exp = math.MaxInt64
		}
		keyExpirations = append(keyExpirations, keyExpiration{k, exp})
	}

	sort.Slice(keyExpirations, func(i, j int) bool {
		return keyExpirations[i].expiration < keyExpirations[j].expiration
	})

	keys := make([]K, 0, itemsToRemove)
	items := make([]Item[V], 0, itemsToRemove)
	for i := 0; i < itemsToRemove; i++ {
		k := keyExpirations[i].key
		keys = append(keys, k)
		items = append(items, c.items[k])
		delete(c.items, k)
	}
	return keys, items
}

func (c *TTLCache[K, V]) startCleanupTimer() {
	if c.cleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.cleanupInterval)
	go func() {
		for {
			select {
			case <-ticker.C:
				c.DeleteExpired()
			case <-c.stopCleanup:
				ticker.Stop()
				return
			}
		}
	}()
}

// DeleteExpired deletes all expired items and returns how many were removed.
func (c *TTLCache[K, V]) DeleteExpired() int {
	now := c.now().UnixNano()

	var keys []K
	var items []Item[V]

	c.mu.Lock()
	for k, v := range c.items {
		if v.Expired(now) {
			keys = append(keys, k)
			items = append(items, v)
			delete(c.items, k)
		}
	}
	c.mu.Unlock()

	c.notifyEvicted(keys, items)
	return len(keys)
}

func (c *TTLCache[K, V]) notifyEvicted(keys []K, items []Item[V]) {
	if c.onEvict == nil {
		return
	}
	for i, k := range keys {
		c.onEvict(k, items[i].Value)
	}
}

// Stop stops the cleanup timer. It is safe to call more than once.
func (c *TTLCache[K, V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}
