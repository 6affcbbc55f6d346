package collapse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// tree is A -> {B, C}, C -> D, plus E -> D so D has two parents.
func tree() []dag.Node {
	return []dag.Node{
		{ID: "A"},
		{ID: "B", ParentIDs: []string{"A"}},
		{ID: "C", ParentIDs: []string{"A"}},
		{ID: "D", ParentIDs: []string{"C", "E"}},
		{ID: "E"},
	}
}

func TestCollapseExpandScenario(t *testing.T) {
	g := dag.NewGuard(tree())
	s := New()

	require.NoError(t, s.Collapse(g, "A"))
	assert.Equal(t, []string{"B", "C", "D"}, s.Hidden())
	assert.True(t, s.IsCollapsed("A"))
	assert.True(t, s.IsHidden("D"))
	assert.False(t, s.IsHidden("A"))

	require.NoError(t, s.Expand("A"))
	assert.Empty(t, s.Hidden())
}

func TestCollapseErrors(t *testing.T) {
	g := dag.NewGuard(tree())
	s := New()

	assert.Equal(t, apperr.ErrCodeCannotCollapseLeaf, apperr.GetCode(s.Collapse(g, "B")))
	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(s.Collapse(g, "ghost")))
	require.NoError(t, s.Collapse(g, "A"))
	assert.Equal(t, apperr.ErrCodeAlreadyCollapsed, apperr.GetCode(s.Collapse(g, "A")))
	assert.Equal(t, apperr.ErrCodeNotCollapsed, apperr.GetCode(s.Expand("C")))
}

func TestOverlappingCollapses(t *testing.T) {
	g := dag.NewGuard(tree())
	s := New()
	require.NoError(t, s.Collapse(g, "A"))
	require.NoError(t, s.Collapse(g, "E"))

	// D stays hidden through E after A expands.
	require.NoError(t, s.Expand("A"))
	assert.Equal(t, []string{"D"}, s.Hidden())
	assert.Equal(t, []string{"E"}, s.Collapsed())
}

func TestOnNodeDeleted(t *testing.T) {
	s := New()
	g := dag.NewGuard(tree())
	require.NoError(t, s.Collapse(g, "C"))
	require.NoError(t, s.Collapse(g, "A"))

	s.OnNodeDeleted("C")
	assert.False(t, s.IsCollapsed("C"))
	assert.Equal(t, []string{"B", "D"}, s.Hidden())

	// After the store drops C, D is no longer below A.
	remaining := []dag.Node{
		{ID: "A"},
		{ID: "B", ParentIDs: []string{"A"}},
		{ID: "D", ParentIDs: []string{"E"}},
		{ID: "E"},
	}
	s.Refresh(dag.NewGuard(remaining))
	assert.Equal(t, []string{"B"}, s.Hidden())
}

func TestRefresh(t *testing.T) {
	s := New()
	require.NoError(t, s.Collapse(dag.NewGuard(tree()), "C"))
	require.NoError(t, s.Collapse(dag.NewGuard(tree()), "E"))

	// D moves under B and E is removed; C loses its only child.
	next := []dag.Node{
		{ID: "A"},
		{ID: "B", ParentIDs: []string{"A"}},
		{ID: "C", ParentIDs: []string{"A"}},
		{ID: "D", ParentIDs: []string{"B"}},
	}
	dropped := s.Refresh(dag.NewGuard(next))
	assert.Equal(t, []string{"E"}, dropped)
	assert.Empty(t, s.Hidden())
	assert.Equal(t, []string{"C"}, s.Collapsed())
}

func TestRefreshKeepsChildlessCollapse(t *testing.T) {
	s := New()
	require.NoError(t, s.Collapse(dag.NewGuard(tree()), "C"))

	// D leaves C, then comes back.
	without := []dag.Node{
		{ID: "A"},
		{ID: "B", ParentIDs: []string{"A"}},
		{ID: "C", ParentIDs: []string{"A"}},
		{ID: "D", ParentIDs: []string{"E"}},
		{ID: "E"},
	}
	assert.Empty(t, s.Refresh(dag.NewGuard(without)))
	assert.True(t, s.IsCollapsed("C"))
	assert.Empty(t, s.Hidden())

	assert.Empty(t, s.Refresh(dag.NewGuard(tree())))
	assert.Equal(t, []string{"D"}, s.Hidden())

	s.Refresh(dag.NewGuard(without))
	require.NoError(t, s.Expand("C"), "a childless collapse can still be expanded")
	assert.Empty(t, s.Collapsed())
}

func TestReveal(t *testing.T) {
	g := dag.NewGuard(tree())
	s := New()
	require.NoError(t, s.Collapse(g, "C"))
	require.NoError(t, s.Collapse(g, "A"))
	require.NoError(t, s.Collapse(g, "E"))

	expanded, err := s.Reveal(g, "D")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "C", "E"}, expanded)
	assert.False(t, s.IsHidden("D"))
	assert.Empty(t, s.Collapsed())

	_, err = s.Reveal(g, "ghost")
	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(err))
}

func TestRevealKeepsUnrelatedCollapses(t *testing.T) {
	g := dag.NewGuard(tree())
	s := New()
	require.NoError(t, s.Collapse(g, "C"))
	require.NoError(t, s.Collapse(g, "A"))

	expanded, err := s.Reveal(g, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, expanded)
	assert.True(t, s.IsCollapsed("C"))
	assert.Equal(t, []string{"D"}, s.Hidden())
}

func TestHiddenMatchesUnionOfDescendants(t *testing.T) {
	nodes := []dag.Node{
		{ID: "r"},
		{ID: "a", ParentIDs: []string{"r"}},
		{ID: "b", ParentIDs: []string{"r"}},
		{ID: "c", ParentIDs: []string{"a", "b"}},
		{ID: "d", ParentIDs: []string{"c"}},
		{ID: "e", ParentIDs: []string{"b"}},
	}
	g := dag.NewGuard(nodes)
	s := New()

	ops := []struct {
		collapse bool
		id       string
	}{
		{true, "a"}, {true, "b"}, {true, "c"}, {false, "b"}, {true, "r"},
		{false, "a"}, {false, "r"}, {true, "b"}, {false, "c"},
	}
	for i, op := range ops {
		if op.collapse {
			require.NoError(t, s.Collapse(g, op.id), "step %d", i)
		} else {
			require.NoError(t, s.Expand(op.id), "step %d", i)
		}

		want := g.DescendantSet(s.Collapsed()...)
		got := s.HiddenSet()
		assert.Equal(t, len(want), len(got), "step %d", i)
		for id := range want {
			assert.True(t, got[id], "step %d: %s should be hidden", i, id)
		}
	}
}

func TestRestoreAndReset(t *testing.T) {
	g := dag.NewGuard(tree())
	s := New()
	s.Restore(g, []string{"C", "B", "ghost"})
	assert.Equal(t, []string{"C"}, s.Collapsed())
	assert.Equal(t, []string{"D"}, s.Hidden())

	s.Reset()
	assert.Empty(t, s.Collapsed())
	assert.Empty(t, s.Hidden())
}
