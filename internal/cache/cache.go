// Package cache keeps computed tiles keyed by tile.Key, with reservations
// for tiles that have been dispatched but not yet delivered.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/five82/fractile/internal/tile"
)

// Status is the lifecycle of a cache slot.
type Status int

const (
	Absent Status = iota
	Pending
	Ready
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return "absent"
	}
}

type entry struct {
	status     Status
	tile       *tile.Tile
	token      int
	reservedAt time.Time
	lastUsed   time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache maps keys to tiles. Pending entries are placeholders that stop the
// same key from being dispatched twice; they are never evicted.
type Cache struct {
	mu      sync.Mutex
	entries map[tile.Key]*entry
	pending int
	evicted uint64
	now     func() time.Time
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{entries: make(map[tile.Key]*entry), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the tile for key when it is ready.
func (c *Cache) Get(key tile.Key) (*tile.Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.status != Ready {
		return nil, false
	}
	return e.tile, true
}

// Status reports what the cache holds for key.
func (c *Cache) Status(key tile.Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.status
	}
	return Absent
}

// Reserve records that key has been dispatched with token. It returns false
// when the key is already pending or ready.
func (c *Cache) Reserve(key tile.Key, token int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	now := c.now()
	c.entries[key] = &entry{status: Pending, token: token, reservedAt: now, lastUsed: now}
	c.pending++
	return true
}

// Insert stores a computed tile, replacing any reservation for its key.
func (c *Cache) Insert(t *tile.Tile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[t.Key]; ok && e.status == Pending {
		c.pending--
	}
	c.entries[t.Key] = &entry{status: Ready, tile: t, lastUsed: c.now()}
}

// Release drops the reservation for key if it is still pending under token.
// A reservation taken later under another token is left alone.
func (c *Cache) Release(key tile.Key, token int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.status != Pending || e.token != token {
		return false
	}
	delete(c.entries, key)
	c.pending--
	return true
}

// Touch marks key as just used.
func (c *Cache) Touch(key tile.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.status == Ready {
		e.lastUsed = c.now()
	}
}

// EvictExcess removes the least recently used ready tiles once the cache
// holds more than capacity entries, stopping at 7/8 of capacity so eviction
// does not run on every frame. It returns the evicted keys.
func (c *Cache) EvictExcess(capacity int) []tile.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	if capacity < 0 || len(c.entries) <= capacity {
		return nil
	}
	target := capacity * 7 / 8

	type candidate struct {
		key      tile.Key
		lastUsed time.Time
	}
	ready := make([]candidate, 0, len(c.entries)-c.pending)
	for k, e := range c.entries {
		if e.status == Ready {
			ready = append(ready, candidate{k, e.lastUsed})
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if !ready[i].lastUsed.Equal(ready[j].lastUsed) {
			return ready[i].lastUsed.Before(ready[j].lastUsed)
		}
		return lessKey(ready[i].key, ready[j].key)
	})

	var evicted []tile.Key
	for _, cand := range ready {
		if len(c.entries) <= target {
			break
		}
		delete(c.entries, cand.key)
		evicted = append(evicted, cand.key)
	}
	c.evicted += uint64(len(evicted))
	return evicted
}

// Rearm releases reservations older than timeout so their keys can be
// dispatched again. It covers results that never arrive.
func (c *Cache) Rearm(timeout time.Duration) []tile.Key {
	if timeout <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == 0 {
		return nil
	}
	cutoff := c.now().Add(-timeout)
	var keys []tile.Key
	for k, e := range c.entries {
		if e.status == Pending && e.reservedAt.Before(cutoff) {
			delete(c.entries, k)
			c.pending--
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of entries, reservations included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Pending returns the number of outstanding reservations.
func (c *Cache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Evicted returns the total number of tiles evicted so far.
func (c *Cache) Evicted() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evicted
}

// Capacity sizes the cache as a multiple of the tiles one screen needs.
func Capacity(visible, multiplier int) int {
	if multiplier < 1 {
		multiplier = 1
	}
	if visible < 1 {
		visible = 1
	}
	return visible * multiplier
}

func lessKey(a, b tile.Key) bool {
	if a.Level != b.Level {
		return a.Level < b.Level
	}
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}
