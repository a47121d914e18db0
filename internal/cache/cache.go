// Package cache provides a read-through TTL cache keyed by group ID.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a computed entry stays fresh.
const DefaultTTL = time.Minute

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// TTLCache holds the last computed value per key until it expires or is
// invalidated. Stored values must be treated as immutable snapshots.
//
// Every invalidation advances the key's generation. A reader that computes
// a value from storage takes the generation first and stores the result with
// PutIfCurrent, so a value computed before an invalidation is never cached
// after it.
type TTLCache[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   Clock
	items map[string]entry[T]

	seq   uint64
	gens  map[string]uint64
	allAt uint64
}

type entry[T any] struct {
	data     T
	storedAt time.Time
}

// Option configures a TTLCache.
type Option func(*options)

type options struct {
	now Clock
}

// WithClock overrides time.Now.
func WithClock(now Clock) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache whose entries expire after ttl.
// A non-positive ttl falls back to DefaultTTL.
func New[T any](ttl time.Duration, opts ...Option) *TTLCache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache[T]{
		ttl:   ttl,
		now:   o.now,
		items: make(map[string]entry[T]),
		gens:  make(map[string]uint64),
	}
}

// Get returns the value for key if present and younger than the TTL.
// Expired entries are removed.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.items, key)
		return zero, false
	}
	return e.data, true
}

// Put stores value for key, replacing any previous entry.
func (c *TTLCache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{data: value, storedAt: c.now()}
}

// Generation returns the current generation of key.
func (c *TTLCache[T]) Generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generation(key)
}

func (c *TTLCache[T]) generation(key string) uint64 {
	return max(c.gens[key], c.allAt)
}

// PutIfCurrent stores value for key only if key has not been invalidated
// since gen was read with Generation. It reports whether the value was stored.
func (c *TTLCache[T]) PutIfCurrent(key string, value T, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation(key) != gen {
		return false
	}
	c.items[key] = entry[T]{data: value, storedAt: c.now()}
	return true
}

// Invalidate drops the entry for key and advances its generation.
func (c *TTLCache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	c.seq++
	c.gens[key] = c.seq
}

// InvalidateAll drops every entry and advances every generation.
func (c *TTLCache[T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry[T])
	c.seq++
	c.allAt = c.seq
	c.gens = make(map[string]uint64)
}

// CleanExpired removes expired entries and returns how many were removed.
func (c *TTLCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.items {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of entries, expired ones included.
func (c *TTLCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Cleaner is anything that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically cleans registered caches until stopped.
type Janitor struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

// NewJanitor creates a janitor for the given caches.
func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{
		caches: caches,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins cleaning every interval in a background goroutine.
// onClean, if non-nil, receives the number of removed entries per sweep.
func (j *Janitor) Start(interval time.Duration, onClean func(removed int)) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed := 0
				for _, c := range j.caches {
					removed += c.CleanExpired()
				}
				if onClean != nil {
					onClean(removed)
				}
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the cleaning goroutine and waits for it to exit.
// It must only be called after Start.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
