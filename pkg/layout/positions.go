package layout

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/matzehuels/dagedit/pkg/cache"
	"github.com/matzehuels/dagedit/pkg/dag"
)

// PositionCache maps node ids to their last settled position and records
// whether any layout pass has completed. It is not safe for concurrent use.
type PositionCache struct {
	positions   map[string]dag.Point
	initialized bool
}

// NewPositionCache creates an empty, uninitialized cache.
func NewPositionCache() *PositionCache {
	return &PositionCache{positions: make(map[string]dag.Point)}
}

// Get returns the cached position of id.
func (c *PositionCache) Get(id string) (dag.Point, bool) {
	p, ok := c.positions[id]
	return p, ok
}

// Set stores the position of id.
func (c *PositionCache) Set(id string, p dag.Point) { c.positions[id] = p }

// Positions returns a copy of all cached positions.
func (c *PositionCache) Positions() map[string]dag.Point { return maps.Clone(c.positions) }

// Len returns the number of cached positions.
func (c *PositionCache) Len() int { return len(c.positions) }

// Initialized reports whether a layout pass has settled since the last
// Reset.
func (c *PositionCache) Initialized() bool { return c.initialized }

// MarkInitialized flags the cache as populated.
func (c *PositionCache) MarkInitialized() { c.initialized = true }

// Reset drops every position and returns to the uninitialized state.
func (c *PositionCache) Reset() {
	clear(c.positions)
	c.initialized = false
}

// Prune drops positions of ids not in keep and returns how many were
// dropped.
func (c *PositionCache) Prune(keep []string) int {
	set := make(map[string]bool, len(keep))
	for _, id := range keep {
		set[id] = true
	}
	n := 0
	for id := range c.positions {
		if !set[id] {
			delete(c.positions, id)
			n++
		}
	}
	return n
}

// Prime copies stored node positions into the cache. When every node has a
// position the cache counts as initialized, so the next pass is incremental
// and a reopened document keeps its saved arrangement. It reports whether
// that was the case.
func (c *PositionCache) Prime(nodes []dag.Node) bool {
	complete := len(nodes) > 0
	for _, n := range nodes {
		if n.Position == nil {
			complete = false
			continue
		}
		c.positions[n.ID] = *n.Position
	}
	if complete {
		c.initialized = true
	}
	return complete
}

type storedPositions struct {
	Initialized bool                 `json:"initialized"`
	Positions   map[string]dag.Point `json:"positions"`
}

// Save writes the cache to store under key.
func (c *PositionCache) Save(ctx context.Context, store cache.Cache, key string, ttl time.Duration) error {
	return cache.SetJSON(ctx, store, cache.KeyTypePositions, key, storedPositions{
		Initialized: c.initialized,
		Positions:   c.positions,
	}, ttl)
}

// Load replaces the cache contents with the entry stored under key. It
// returns false, leaving the cache untouched, on a miss.
func (c *PositionCache) Load(ctx context.Context, store cache.Cache, key string) (bool, error) {
	var sp storedPositions
	if err := cache.GetJSON(ctx, store, cache.KeyTypePositions, key, &sp); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}
	c.positions = sp.Positions
	if c.positions == nil {
		c.positions = make(map[string]dag.Point)
	}
	c.initialized = sp.Initialized
	return true, nil
}
