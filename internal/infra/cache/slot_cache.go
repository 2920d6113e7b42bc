// Package cache provides a read cache in front of the save slot store.
// The backing store stays the source of truth: writes go through first.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/storage"
)

// DefaultExpiration is how long a cached payload is served without re-reading.
const DefaultExpiration = 15 * time.Minute

type entry struct {
	payload []byte
	missing bool // cached ErrNotFound
	expires time.Time
}

// SlotCache wraps a storage.Slot and serves repeated reads from memory.
type SlotCache struct {
	backing    storage.Slot
	expiration time.Duration
	now        func() time.Time

	// writeMu orders Set and Delete so the cache sees writes in backing-store order.
	writeMu sync.Mutex

	mu      sync.Mutex
	entries map[string]entry
	gens    map[string]uint64 // bumped by every write; a fill from an older generation is dropped
	hits    int64
	misses  int64
}

// NewSlotCache creates a cache over backing. A non-positive expiration uses DefaultExpiration.
func NewSlotCache(backing storage.Slot, expiration time.Duration) *SlotCache {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &SlotCache{
		backing:    backing,
		expiration: expiration,
		now:        time.Now,
		entries:    make(map[string]entry),
		gens:       make(map[string]uint64),
	}
}

// Get returns the cached payload or reads through to the backing store.
func (c *SlotCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expires) {
		c.hits++
		c.mu.Unlock()
		if e.missing {
			return nil, storage.ErrNotFound
		}
		return clone(e.payload), nil
	}
	c.misses++
	gen := c.gens[key]
	c.mu.Unlock()

	payload, err := c.backing.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.fill(key, gen, entry{missing: true})
		return nil, err
	case err != nil:
		return nil, err
	}
	c.fill(key, gen, entry{payload: clone(payload)})
	return payload, nil
}

// Set writes through and refreshes the cached copy.
func (c *SlotCache) Set(ctx context.Context, key string, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.backing.Set(ctx, key, payload); err != nil {
		c.Invalidate(key)
		return err
	}
	c.written(key, &entry{payload: clone(payload)})
	return nil
}

// Delete removes the slot from the backing store and the cache.
func (c *SlotCache) Delete(ctx context.Context, key string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := c.backing.Delete(ctx, key)
	c.written(key, nil)
	return err
}

// List is never cached.
func (c *SlotCache) List(ctx context.Context) ([]storage.SlotInfo, error) {
	return c.backing.List(ctx)
}

// Invalidate drops one cached slot, including any read still in flight.
func (c *SlotCache) Invalidate(key string) {
	c.written(key, nil)
}

// Stats returns cache hits and misses so far.
func (c *SlotCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// fill caches a read-through result unless a write landed since the read began.
func (c *SlotCache) fill(key string, gen uint64, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return
	}
	e.expires = c.now().Add(c.expiration)
	c.entries[key] = e
}

// written starts a new generation for key and caches e, or drops the entry when e is nil.
func (c *SlotCache) written(key string, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	if e == nil {
		delete(c.entries, key)
		return
	}
	e.expires = c.now().Add(c.expiration)
	c.entries[key] = *e
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
