package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/realtime"
)

// Invalidation marks cached relation data stale. An empty Table means every table.
type Invalidation struct {
	Table  string
	Reason string
}

type tableEntry struct {
	rows      []backend.Row
	fetchedAt time.Time
	stale     bool
}

// TableCache keeps the last fetched rows of each relation until invalidated.
// Every invalidation bumps a generation; a fetch that started before the bump
// is stored stale, so the next Get refetches.
type TableCache struct {
	mu      sync.RWMutex
	entries map[string]*tableEntry
	gens    map[string]uint64
	allGen  uint64
	last    Invalidation
	flight  singleflight.Group
}

func NewTableCache() *TableCache {
	return &TableCache{entries: make(map[string]*tableEntry), gens: make(map[string]uint64)}
}

// generation is the invalidation count seen by table. Callers hold c.mu.
func (c *TableCache) generation(table string) uint64 {
	return c.gens[table] + c.allGen
}

// Get returns the cached rows of table, calling fetch when the entry is
// missing or stale. Concurrent misses of the same generation share one fetch.
func (c *TableCache) Get(ctx context.Context, table string, fetch func(context.Context) ([]backend.Row, error)) ([]backend.Row, error) {
	c.mu.RLock()
	e, ok := c.entries[table]
	if ok && !e.stale {
		rows := e.rows
		c.mu.RUnlock()
		return rows, nil
	}
	gen := c.generation(table)
	c.mu.RUnlock()

	v, err, _ := c.flight.Do(table+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		rows, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[table] = &tableEntry{rows: rows, fetchedAt: time.Now(), stale: c.generation(table) != gen}
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]backend.Row), nil
}

func (c *TableCache) Invalidate(inv Invalidation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = inv
	if inv.Table == "" {
		c.allGen++
		for _, e := range c.entries {
			e.stale = true
		}
		return
	}
	c.gens[inv.Table]++
	if e, ok := c.entries[inv.Table]; ok {
		e.stale = true
	}
}

// Fresh reports whether table has a non-stale entry.
func (c *TableCache) Fresh(table string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[table]
	return ok && !e.stale
}

func (c *TableCache) LastInvalidation() Invalidation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Listen turns change events into invalidations until ctx ends or events closes.
func (c *TableCache) Listen(ctx context.Context, events <-chan realtime.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.Invalidate(Invalidation{Table: ev.Table, Reason: string(ev.Type)})
		}
	}
}
