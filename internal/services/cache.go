package services

import (
	"sync"
	"time"

	"flightpulse/pkg/contracts/domain"
)

// TableCache holds the most recent enriched flight table. Ingest replaces
// the whole table; readers get the batch that was current when they asked.
// Read endpoints that run between ingests serve from here instead of
// re-fetching, so the "last analysis" surface is explicit rather than
// hidden mutable state.
type TableCache struct {
	mu        sync.RWMutex
	flights   []domain.Flight
	source    string
	updatedAt time.Time
}

// NewTableCache creates an empty cache.
func NewTableCache() *TableCache {
	return &TableCache{}
}

// Set replaces the cached table.
func (c *TableCache) Set(flights []domain.Flight, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights = flights
	c.source = source
	c.updatedAt = time.Now()
}

// Get returns the cached table, its source, and whether anything has been
// ingested. Callers must not mutate the returned slice.
func (c *TableCache) Get() ([]domain.Flight, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.flights == nil {
		return nil, "", false
	}
	return c.flights, c.source, true
}

// UpdatedAt reports when the table was last replaced.
func (c *TableCache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Clear drops the cached table.
func (c *TableCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights = nil
	c.source = ""
	c.updatedAt = time.Time{}
}
