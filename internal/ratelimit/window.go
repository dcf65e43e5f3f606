// Package ratelimit implements a fixed-window request counter keyed by
// client identity. Each key's window starts on its first increment and
// restarts on the first increment after expiry; expired entries count as
// zero even before they are physically evicted.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the number of tracked keys when no explicit
// capacity is configured.
const DefaultCapacity = 8192

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// Counter is a bounded key→count store with per-entry expiry. Safe for
// concurrent use. When full, inserting a new key evicts the entry closest
// to expiry, keeping memory bounded under extreme key cardinality.
type Counter struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*windowEntry
}

// NewCounter creates a Counter tracking at most capacity keys.
// A non-positive capacity falls back to DefaultCapacity.
func NewCounter(capacity int) *Counter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Counter{
		capacity: capacity,
		entries:  make(map[string]*windowEntry, capacity),
	}
}

// IncrementAndGet atomically increments the count for key and returns the
// post-increment value. An absent or expired entry restarts at 1 with a
// fresh window of the given duration.
func (c *Counter) IncrementAndGet(key string, window time.Duration) int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && now.Before(e.expiresAt) {
		e.count++
		return e.count
	}

	if !ok && len(c.entries) >= c.capacity {
		c.evictOne(now)
	}

	c.entries[key] = &windowEntry{count: 1, expiresAt: now.Add(window)}
	return 1
}

// Peek returns the current count for key without mutating it. Absent and
// expired entries read as zero.
func (c *Counter) Peek(key string) int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		return 0
	}
	return e.count
}

// Len returns the number of physically stored entries, expired or not.
func (c *Counter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOne removes all expired entries, or failing that the live entry
// closest to expiry. Caller holds the lock.
func (c *Counter) evictOne(now time.Time) {
	var victim string
	var victimExpiry time.Time
	removed := false

	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed = true
			continue
		}
		if victim == "" || e.expiresAt.Before(victimExpiry) {
			victim = k
			victimExpiry = e.expiresAt
		}
	}
	if !removed && victim != "" {
		delete(c.entries, victim)
	}
}
