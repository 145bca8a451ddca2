package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is used when NewMemory gets a non-positive interval.
const DefaultSweepInterval = time.Minute

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the default in-process Adapter. Expired entries are evicted
// when read and by a background sweep; correctness never depends on the
// sweep having run.
type Memory struct {
	mu            sync.RWMutex
	items         map[string]memoryEntry
	stopSweep     chan struct{}
	closeOnce     sync.Once
	sweepInterval time.Duration

	now func() time.Time
}

// NewMemory creates an in-memory cache and starts its sweep goroutine.
// Call Close to stop it.
func NewMemory(sweepInterval time.Duration) *Memory {
	return newMemory(sweepInterval, time.Now)
}

func newMemory(sweepInterval time.Duration, now func() time.Time) *Memory {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	c := &Memory{
		items:         make(map[string]memoryEntry),
		stopSweep:     make(chan struct{}),
		sweepInterval: sweepInterval,
		now:           now,
	}

	go c.sweep()

	return c
}

// Get returns a copy of the value for key unless it is missing or expired.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	now := c.now()
	if now.After(entry.expiresAt) {
		c.mu.Lock()
		// re-check: a concurrent Set may have replaced the entry
		if e, exists := c.items[key]; exists && now.After(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return bytes.Clone(entry.value), true, nil
}

// Set stores a copy of value for ttl. A non-positive ttl removes the key.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	expiresAt := c.now().Add(ttl)

	c.mu.Lock()
	c.items[key] = memoryEntry{
		value:     valueCopy,
		expiresAt: expiresAt,
	}
	c.mu.Unlock()

	return nil
}

// Delete removes key if present.
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Clear removes every entry.
func (c *Memory) Clear(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included until
// they are observed or swept.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweep goroutine. The cache stays usable afterwards.
func (c *Memory) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopSweep)
	})
	return nil
}

func (c *Memory) sweep() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopSweep:
			return
		}
	}
}

func (c *Memory) removeExpired() {
	now := c.now()
	c.mu.Lock()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

var _ Adapter = (*Memory)(nil)
