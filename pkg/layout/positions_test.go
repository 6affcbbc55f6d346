package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dagedit/pkg/cache"
	"github.com/matzehuels/dagedit/pkg/dag"
)

func TestPositionCache(t *testing.T) {
	c := NewPositionCache()
	assert.False(t, c.Initialized())

	c.Set("a", dag.Point{X: 1, Y: 2})
	c.Set("b", dag.Point{X: 3, Y: 4})
	p, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, dag.Point{X: 1, Y: 2}, p)

	snapshot := c.Positions()
	snapshot["a"] = dag.Point{}
	p, _ = c.Get("a")
	assert.Equal(t, 1.0, p.X, "Positions returns a copy")

	assert.Equal(t, 1, c.Prune([]string{"a"}))
	assert.Equal(t, 1, c.Len())

	c.MarkInitialized()
	c.Reset()
	assert.False(t, c.Initialized())
	assert.Zero(t, c.Len())
}

func TestPositionCachePrime(t *testing.T) {
	c := NewPositionCache()
	partial := []dag.Node{{ID: "a", Position: &dag.Point{X: 1}}, {ID: "b"}}
	assert.False(t, c.Prime(partial))
	assert.False(t, c.Initialized())
	assert.Equal(t, 1, c.Len())

	full := []dag.Node{{ID: "a", Position: &dag.Point{X: 1}}, {ID: "b", Position: &dag.Point{Y: 2}}}
	assert.True(t, c.Prime(full))
	assert.True(t, c.Initialized())
}

func TestPositionCacheSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryCache()

	c := NewPositionCache()
	c.Set("a", dag.Point{X: 1, Y: 2})
	c.MarkInitialized()
	require.NoError(t, c.Save(ctx, store, "k", 0))

	loaded := NewPositionCache()
	ok, err := loaded.Load(ctx, store, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, loaded.Initialized())
	assert.Equal(t, c.Positions(), loaded.Positions())

	fresh := NewPositionCache()
	ok, err = fresh.Load(ctx, store, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
