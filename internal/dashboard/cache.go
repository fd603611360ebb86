package dashboard

import (
	"context"
	"sync"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/ports"
)

// TableCache keeps the last loaded snapshot in memory until invalidated.
// Load failures are not cached, so a snapshot written later is picked up.
type TableCache struct {
	reader ports.TableReader

	mu     sync.RWMutex
	table  domain.Table
	loaded bool
}

// NewTableCache wraps reader.
func NewTableCache(reader ports.TableReader) *TableCache {
	return &TableCache{reader: reader}
}

// Get returns the cached table, loading it on first use.
func (c *TableCache) Get(ctx context.Context) (domain.Table, error) {
	c.mu.RLock()
	if c.loaded {
		table := c.table
		c.mu.RUnlock()
		return table, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.table, nil
	}

	table, err := c.reader.Load(ctx)
	if err != nil {
		return domain.Table{}, err
	}
	c.table, c.loaded = table, true
	return table, nil
}

// Invalidate drops the cached table.
func (c *TableCache) Invalidate() {
	c.mu.Lock()
	c.table, c.loaded = domain.Table{}, false
	c.mu.Unlock()
}
