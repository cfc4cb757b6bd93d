package notebook

import (
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nbtodo/nbtodo/internal/models"
)

// DefaultTTL is the freshness window applied when no TTL is configured.
const DefaultTTL = 5 * time.Second

// Cache bounds the cost of repeated notebook scans. Results are served from
// memory within a TTL window, and concurrent callers that find the window
// expired share one refresh instead of each triggering a scan of their own.
//
// The mutex guards items and lastRefresh only. The scan itself always runs
// outside the critical section, so readers hitting a fresh cache are never
// blocked behind a slow tree walk.
type Cache struct {
	scan func() []models.Todo
	ttl  time.Duration

	group singleflight.Group

	mu          sync.Mutex
	items       []models.Todo
	lastRefresh time.Time
}

// NewCache wraps scan with a TTL-bounded, single-flight cache. A zero or
// negative ttl falls back to DefaultTTL.
func NewCache(scan func() []models.Todo, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{scan: scan, ttl: ttl}
}

// Items returns the current todo list, rescanning when the cached copy is
// older than the TTL. Every caller gets its own slice. An empty scan result
// counts as a valid cached value and is reused until the window expires.
func (c *Cache) Items() []models.Todo {
	c.mu.Lock()
	if !c.lastRefresh.IsZero() && time.Since(c.lastRefresh) < c.ttl {
		items := slices.Clone(c.items)
		c.mu.Unlock()
		return items
	}
	c.mu.Unlock()

	// Everyone who found the window expired joins the same flight. The scan
	// runs once and installs its result before the flight resolves.
	v, _, _ := c.group.Do("refresh", func() (any, error) {
		items := c.scan()
		c.mu.Lock()
		c.items = items
		c.lastRefresh = time.Now()
		c.mu.Unlock()
		return items, nil
	})
	return slices.Clone(v.([]models.Todo))
}
