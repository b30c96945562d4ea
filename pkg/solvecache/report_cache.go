// Package solvecache holds the two HTTP-layer-only concerns that sit
// outside the scheduling core: a short-lived report cache so a client can
// fetch a CSV/PDF render of a just-completed solve, and an optional
// Redis-backed gate bounding how many solves run concurrently across
// replicas. Neither is a schedule system of record and neither is
// imported by internal/engine or internal/solver.
package solvecache

import (
	"sync"

	"coursesched/internal/domain"
)

// ReportCache holds the most recent N solve results in memory, keyed by a
// generated proposal id, purely so GET /solve/report can serve a report
// right after a solve. It evicts the oldest entry once full; it is never
// consulted by a later POST /solve.
type ReportCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]domain.ScheduleResult
}

// NewReportCache returns a cache holding up to capacity entries. A
// non-positive capacity disables storage (Get always misses).
func NewReportCache(capacity int) *ReportCache {
	return &ReportCache{
		capacity: capacity,
		entries:  make(map[string]domain.ScheduleResult),
	}
}

// Put stores result under proposalID, evicting the oldest entry if the
// cache is full.
func (c *ReportCache) Put(proposalID string, result domain.ScheduleResult) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[proposalID]; !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, proposalID)
	}
	c.entries[proposalID] = result
}

// Get retrieves a previously stored result.
func (c *ReportCache) Get(proposalID string) (domain.ScheduleResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[proposalID]
	return result, ok
}
