package lookup

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"spectra/internal/domain"
)

// Sentinel is returned when a key cannot be resolved.
const Sentinel = "-1"

// nameQuery resolves a product id to its display name within the active
// account (ac_nmb = 1).
const nameQuery = `SELECT name FROM product WHERE id = ? AND ac_nmb = 1`

// Querier is the slice of the data-access wrapper the cache needs.
type Querier interface {
	FetchOne(ctx context.Context, query string, params []any) (*domain.Row, error)
}

// Cache memoizes id → name lookups for the lifetime of the process.
// Entries are never invalidated except by Clear.
type Cache struct {
	mu      sync.Mutex
	db      Querier
	entries map[int64]string

	sched *cron.Cron
}

// New creates an empty, unconfigured Cache.
func New() *Cache {
	return &Cache{entries: make(map[int64]string)}
}

// Configure installs the handle used on cache misses. A later call replaces
// the handle; existing entries are kept.
func (c *Cache) Configure(db Querier) {
	c.mu.Lock()
	c.db = db
	c.mu.Unlock()
}

// Resolve returns the name for key. Without a configured handle, or when the
// lookup fails, it returns Sentinel and caches nothing. A lookup that finds no
// name caches and returns Sentinel.
func (c *Cache) Resolve(ctx context.Context, key int64) string {
	c.mu.Lock()
	if name, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return name
	}
	db := c.db
	c.mu.Unlock()

	if db == nil {
		return Sentinel
	}

	row, err := db.FetchOne(ctx, nameQuery, []any{key})
	if err != nil {
		log.Printf("[LOOKUP] resolve %d: %v", key, err)
		return Sentinel
	}

	name := Sentinel
	if row != nil {
		if v, ok := row.Get("name"); ok && v != nil {
			name = fmt.Sprint(v)
		}
	}

	c.mu.Lock()
	c.entries[key] = name
	c.mu.Unlock()
	return name
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[int64]string)
	c.mu.Unlock()
}

// Len returns the number of cached entries, sentinels included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ScheduleReset clears the cache on a cron schedule (standard five-field
// syntax or descriptors such as "@hourly"). An empty spec cancels any
// existing schedule and restores the never-invalidate default.
func (c *Cache) ScheduleReset(spec string) error {
	var sched *cron.Cron
	if spec != "" {
		sched = cron.New()
		if _, err := sched.AddFunc(spec, func() {
			log.Printf("[LOOKUP] scheduled reset (%d entries)", c.Len())
			c.Clear()
		}); err != nil {
			c.StopReset()
			return fmt.Errorf("lookup reset schedule %q: %w", spec, err)
		}
		sched.Start()
	}

	c.mu.Lock()
	old := c.sched
	c.sched = sched
	c.mu.Unlock()
	if old != nil {
		old.Stop()
	}
	return nil
}

// StopReset stops the reset schedule, if any.
func (c *Cache) StopReset() {
	c.mu.Lock()
	sched := c.sched
	c.sched = nil
	c.mu.Unlock()
	if sched != nil {
		sched.Stop()
	}
}
