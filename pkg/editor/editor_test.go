package editor

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
	"github.com/matzehuels/dagedit/pkg/history"
	"github.com/matzehuels/dagedit/pkg/layout"
	"github.com/matzehuels/dagedit/pkg/mutate"
	"github.com/matzehuels/dagedit/pkg/validate"
)

func load(t *testing.T, opts Options, nodes ...dag.Node) *Editor {
	t.Helper()
	e := New(opts)
	require.NoError(t, e.Load(nodes))
	_, err := e.Sync(context.Background())
	require.NoError(t, err)
	return e
}

func node(id string, parents ...string) dag.Node {
	return dag.Node{ID: id, ParentIDs: parents}
}

func parents(t *testing.T, e *Editor, id string) []string {
	t.Helper()
	n, ok := e.Node(id)
	require.True(t, ok, "node %q missing", id)
	return n.ParentIDs
}

func TestAddParentRejectsCycle(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"), node("C", "B"))
	before := e.Nodes()

	rec := &mutate.Recorder{}
	e.Subscribe(rec)

	_, err := e.AddParent(ctx, "A", "C")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrCodeCycleRejected))
	assert.Equal(t, before, e.Nodes(), "rejected edit must not change the document")
	assert.False(t, e.CanUndo(), "rejected edit must not be recorded")

	require.Len(t, rec.Events, 1)
	assert.Equal(t, mutate.ValidationFailed, rec.Events[0].Kind)
	assert.Equal(t, "A", rec.Events[0].NodeID)
	assert.Error(t, rec.Events[0].Err)
}

func TestSelfLoopRejected(t *testing.T) {
	e := load(t, Options{}, node("A"))
	_, err := e.AddParent(context.Background(), "A", "A")
	assert.True(t, apperr.Is(err, apperr.ErrCodeSelfLoopRejected))

	e.SetPolicy(validate.Policy{AllowSelfLoops: true})
	_, err = e.AddParent(context.Background(), "A", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, parents(t, e, "A"))
}

func TestMaxParents(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{Policy: validate.Policy{MaxParents: 1}},
		node("A"), node("B"), node("C", "A"))

	_, err := e.AddParent(ctx, "C", "B")
	assert.True(t, apperr.Is(err, apperr.ErrCodeMaxParentsExceeded))

	_, err = e.SetParents(ctx, "C", []string{"A", "B"})
	assert.True(t, apperr.Is(err, apperr.ErrCodeMaxParentsExceeded))

	// Replacing the single parent stays within the limit.
	_, err = e.Reparent(ctx, "C", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, parents(t, e, "C"))
}

func TestMaxDepth(t *testing.T) {
	e := load(t, Options{Policy: validate.Policy{MaxDepth: 2}},
		node("A"), node("B", "A"), node("C", "B"), node("D"))

	_, err := e.AddParent(context.Background(), "D", "C")
	assert.True(t, apperr.Is(err, apperr.ErrCodeMaxDepthExceeded))
	_, err = e.AddParent(context.Background(), "D", "B")
	assert.NoError(t, err)
}

func TestDeleteNodeUndoRestoresLinks(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"), node("C", "B"))
	before := e.Nodes()

	u, err := e.DeleteNode(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, u.NodeIDs)
	assert.Equal(t, layout.KindRemove, u.Change.Kind)
	assert.False(t, e.Guard().Has("B"))
	assert.Empty(t, parents(t, e, "C"))

	rec := &mutate.Recorder{}
	e.Subscribe(rec)

	_, err = e.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, e.Nodes())
	assert.Equal(t, []string{"B"}, parents(t, e, "C"))
	assert.Equal(t, []mutate.EventKind{mutate.NodeAdded, mutate.LinkAdded, mutate.LinkAdded}, rec.Kinds())
}

func TestUndoRestoresDeletedPosition(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"), node("C", "B"))
	want, ok := e.Position("B")
	require.True(t, ok)

	_, err := e.DeleteNode(ctx, "B")
	require.NoError(t, err)
	_, ok = e.Position("B")
	assert.False(t, ok, "deleted node leaves the position cache")

	_, err = e.Undo(ctx)
	require.NoError(t, err)
	got, ok := e.Position("B")
	require.True(t, ok)
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"), node("C", "A"), node("D", "B"))
	states := [][]dag.Node{e.Nodes()}

	steps := []func() (Update, error){
		func() (Update, error) { return e.AddParent(ctx, "D", "C") },
		func() (Update, error) { return e.AddNode(ctx, dag.Node{ID: "E", ParentIDs: []string{"D"}}) },
		func() (Update, error) { return e.Reparent(ctx, "B", "C") },
		func() (Update, error) { return e.DeleteNode(ctx, "A") },
		func() (Update, error) { return e.Detach(ctx, "D") },
	}
	for i, step := range steps {
		_, err := step()
		require.NoError(t, err, "step %d", i)
		states = append(states, e.Nodes())
	}

	for i := len(states) - 2; i >= 0; i-- {
		_, err := e.Undo(ctx)
		require.NoError(t, err)
		assert.Equal(t, states[i], e.Nodes(), "after undo to state %d", i)
	}
	_, err := e.Undo(ctx)
	assert.True(t, apperr.Is(err, apperr.ErrCodeNothingToUndo))
	assert.True(t, apperr.IsHistoryUnderflow(err))

	for i := 1; i < len(states); i++ {
		_, err := e.Redo(ctx)
		require.NoError(t, err)
		assert.Equal(t, states[i], e.Nodes(), "after redo to state %d", i)
	}
	_, err = e.Redo(ctx)
	assert.True(t, apperr.Is(err, apperr.ErrCodeNothingToRedo))
}

func TestNewEditDropsRedo(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B"))

	_, err := e.AddParent(ctx, "B", "A")
	require.NoError(t, err)
	_, err = e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, e.CanRedo())

	_, err = e.AddNode(ctx, node("C", "A"))
	require.NoError(t, err)
	assert.False(t, e.CanRedo())
	undo, redo := e.HistoryLen()
	assert.Equal(t, 1, undo)
	assert.Equal(t, 0, redo)
}

func TestHistoryCapacity(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{History: history.Options{Capacity: 3}}, node("R"))
	for i := range 5 {
		_, err := e.AddNode(ctx, node("N"+strconv.Itoa(i), "R"))
		require.NoError(t, err)
	}
	undo, _ := e.HistoryLen()
	assert.Equal(t, 3, undo)

	for range 3 {
		_, err := e.Undo(ctx)
		require.NoError(t, err)
	}
	// The two oldest additions were evicted and stay.
	assert.Equal(t, 3, e.Len())
	assert.False(t, e.CanUndo())
}

func TestNoOpRelinkRecordsNothing(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"))

	u, err := e.SetParents(ctx, "B", []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, u.NodeIDs)
	assert.False(t, e.CanUndo())

	_, err = e.Detach(ctx, "A")
	require.NoError(t, err)
	assert.False(t, e.CanUndo())
}

func TestRemoveParentOfNonParent(t *testing.T) {
	e := load(t, Options{}, node("A"), node("B"))
	_, err := e.RemoveParent(context.Background(), "B", "A")
	assert.True(t, apperr.Is(err, apperr.ErrCodeNodeNotFound))
}

func TestAddNode(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"))

	u, err := e.AddNode(ctx, dag.Node{Label: "fresh", ParentIDs: []string{"A"}})
	require.NoError(t, err)
	require.Len(t, u.NodeIDs, 1)
	id := u.NodeIDs[0]
	assert.Len(t, id, 36, "generated ids are UUIDs")
	assert.Equal(t, []string{"A"}, parents(t, e, id))
	_, ok := e.Position(id)
	assert.True(t, ok, "new node is placed")

	_, err = e.AddNode(ctx, node("A"))
	assert.True(t, apperr.Is(err, apperr.ErrCodeDuplicateNode))

	_, err = e.AddNode(ctx, node("Z", "missing"))
	assert.True(t, apperr.Is(err, apperr.ErrCodeNodeNotFound))
	assert.False(t, e.Guard().Has("Z"))
}

func TestUpdateAndMoveNode(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"))

	_, err := e.UpdateNode(ctx, dag.Node{ID: "B", Label: "bee", Data: dag.Metadata{"k": 1}})
	require.NoError(t, err)
	n, _ := e.Node("B")
	assert.Equal(t, "bee", n.Label)
	assert.Equal(t, []string{"A"}, n.ParentIDs, "update leaves parents alone")
	assert.True(t, e.CanUndo())

	undo, _ := e.HistoryLen()
	p := dag.Point{X: 7, Y: 9}
	require.NoError(t, e.MoveNode(ctx, "B", p))
	got, _ := e.Position("B")
	assert.Equal(t, p, got)
	after, _ := e.HistoryLen()
	assert.Equal(t, undo, after, "moves are not recorded")

	assert.True(t, apperr.Is(e.MoveNode(ctx, "nope", p), apperr.ErrCodeNodeNotFound))
}

func TestUndoRestoresUpdatedPosition(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"))
	orig, ok := e.Position("B")
	require.True(t, ok)

	moved := dag.Point{X: 999, Y: 999}
	_, err := e.UpdateNode(ctx, dag.Node{ID: "B", Position: &moved})
	require.NoError(t, err)
	got, _ := e.Position("B")
	assert.Equal(t, moved, got)

	_, err = e.Undo(ctx)
	require.NoError(t, err)
	got, _ = e.Position("B")
	assert.Equal(t, orig, got, "undo puts the node back")
	for _, n := range e.PlacedNodes() {
		if n.ID == "B" {
			require.NotNil(t, n.Position)
			assert.Equal(t, orig, *n.Position)
		}
	}

	_, err = e.Redo(ctx)
	require.NoError(t, err)
	got, _ = e.Position("B")
	assert.Equal(t, moved, got, "redo moves it again")
}

func TestUndoLabelKeepsPosition(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"))

	p := dag.Point{X: 7, Y: 9}
	require.NoError(t, e.MoveNode(ctx, "B", p))
	_, err := e.UpdateNode(ctx, dag.Node{ID: "B", Label: "bee"})
	require.NoError(t, err)
	_, err = e.Undo(ctx)
	require.NoError(t, err)

	n, _ := e.Node("B")
	assert.Empty(t, n.Label)
	got, _ := e.Position("B")
	assert.Equal(t, p, got, "undoing a label edit does not move the node")
}

func TestDiffReportsMoves(t *testing.T) {
	p := dag.Point{X: 1, Y: 2}
	before := []dag.Node{node("A"), node("B", "A")}
	after := []dag.Node{node("A"), {ID: "B", ParentIDs: []string{"A"}, Position: &p}}

	d := diff(before, after)
	assert.Equal(t, []string{"B"}, d.moved)
	assert.Empty(t, d.touched)
	assert.Equal(t, []mutate.Event{{Kind: mutate.NodeUpdated, NodeID: "B"}}, d.events)

	assert.Empty(t, diff(after, before).moved, "clearing a stored position is not a move")
}

func TestCollapse(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"), node("C", "A"), node("D", "B", "C"), node("X"))

	require.NoError(t, e.Collapse(ctx, "A"))
	assert.Equal(t, []string{"B", "C", "D"}, e.Hidden())
	assert.Equal(t, []string{"A", "X"}, dag.NodeIDs(e.VisibleNodes()))

	require.NoError(t, e.Collapse(ctx, "B"))
	require.NoError(t, e.Expand(ctx, "A"))
	assert.Equal(t, []string{"D"}, e.Hidden(), "B still hides D")

	expanded, err := e.Reveal(ctx, "D")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, expanded)
	assert.Empty(t, e.Hidden())

	assert.True(t, apperr.Is(e.Collapse(ctx, "X"), apperr.ErrCodeCannotCollapseLeaf))
	assert.True(t, apperr.Is(e.Expand(ctx, "X"), apperr.ErrCodeNotCollapsed))
}

func TestCollapseFollowsStructure(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"), node("C"))
	require.NoError(t, e.Collapse(ctx, "A"))

	_, err := e.AddParent(ctx, "C", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, e.Hidden())

	_, err = e.DeleteNode(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, e.Collapsed())
	assert.Empty(t, e.Hidden())
}

func TestUndoDetachKeepsCollapse(t *testing.T) {
	ctx := context.Background()
	e := load(t, Options{}, node("A"), node("B", "A"))
	require.NoError(t, e.Collapse(ctx, "A"))

	_, err := e.Detach(ctx, "B")
	require.NoError(t, err)
	assert.True(t, e.IsCollapsed("A"))
	assert.Empty(t, e.Hidden())

	_, err = e.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, e.Hidden(), "B is hidden again under A")
}

func TestPredicate(t *testing.T) {
	ctx := context.Background()
	noLeafParents := validate.PredicateFunc(func(_ context.Context, source, _ dag.Node, _ []dag.Node) (bool, error) {
		return source.Label != "leaf", nil
	})
	e := load(t, Options{Policy: validate.Policy{Predicate: noLeafParents}},
		dag.Node{ID: "A"}, dag.Node{ID: "L", Label: "leaf"}, dag.Node{ID: "B"})

	_, err := e.AddParent(ctx, "B", "L")
	assert.True(t, apperr.Is(err, apperr.ErrCodeCustomValidation))
	_, err = e.AddParent(ctx, "B", "A")
	assert.NoError(t, err)
}

func TestRandomEditsStayAcyclic(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewPCG(7, 11))
	e := load(t, Options{}, node("n0"))

	pick := func() string {
		ids := dag.NodeIDs(e.Nodes())
		return ids[r.IntN(len(ids))]
	}
	for i := 1; i <= 300; i++ {
		switch r.IntN(7) {
		case 0, 1:
			_, _ = e.AddNode(ctx, node("n"+strconv.Itoa(i), pick()))
		case 2:
			_, _ = e.AddParent(ctx, pick(), pick())
		case 3:
			_, _ = e.Reparent(ctx, pick(), pick())
		case 4:
			if e.Len() > 1 {
				_, _ = e.DeleteNode(ctx, pick())
			}
		case 5:
			_, _ = e.Undo(ctx)
		case 6:
			_, _ = e.Redo(ctx)
		}
		require.NoError(t, dag.CheckInvariants(e.Nodes(), dag.InvariantOptions{}), "after step %d", i)
		require.Equal(t, e.Len(), len(e.Positions()), "every node has a position after step %d", i)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	e := New(Options{})
	err := e.Load([]dag.Node{node("A", "B"), node("B", "A")})
	assert.True(t, errors.Is(err, dag.ErrGraphHasCycle))

	e.SetPolicy(validate.Policy{AllowCycles: true})
	assert.NoError(t, e.Load([]dag.Node{node("A", "B"), node("B", "A")}))
}

func TestLoadPrimesPositions(t *testing.T) {
	ctx := context.Background()
	pa, pb := dag.Point{X: 10, Y: 20}, dag.Point{X: 30, Y: 40}
	e := New(Options{})
	require.NoError(t, e.Load([]dag.Node{
		{ID: "A", Position: &pa},
		{ID: "B", ParentIDs: []string{"A"}, Position: &pb},
	}))

	u, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, u.Layout.Affected, "fully placed document needs no pass")
	got, _ := e.Position("B")
	assert.Equal(t, pb, got)

	placed := e.PlacedNodes()
	require.Len(t, placed, 2)
	assert.Equal(t, &pa, placed[0].Position)
}

func TestLayoutFailureKeepsEdit(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("engine down")
	e := load(t, Options{}, node("A"))
	e.stabilizer = layout.NewStabilizer(layout.AlgorithmFunc(func(context.Context, layout.Request) (map[string]dag.Point, error) {
		return nil, boom
	}), layout.Options{})

	u, err := e.AddNode(ctx, node("B", "A"))
	require.NoError(t, err, "a failed layout pass does not fail the edit")
	assert.ErrorIs(t, u.LayoutErr, boom)
	assert.True(t, apperr.Is(u.LayoutErr, apperr.ErrCodeLayoutFailed))
	assert.True(t, e.Guard().Has("B"))
	_, ok := e.Position("B")
	assert.True(t, ok, "seeded position is kept")
}

func TestManualLayout(t *testing.T) {
	ctx := context.Background()
	e := New(Options{ManualLayout: true})
	require.NoError(t, e.Load([]dag.Node{node("A")}))

	u, err := e.Sync(ctx)
	require.NoError(t, err)
	require.NotNil(t, u.Pass)
	assert.True(t, u.Pass.Full)
	_, ok := e.Position("A")
	assert.False(t, ok, "nothing is cached before the pass settles")

	want := dag.Point{X: 1, Y: 2}
	out, err := e.Settle(u.Pass, map[string]dag.Point{"A": want})
	require.NoError(t, err)
	assert.Equal(t, want, out.Positions["A"])

	u, err = e.AddNode(ctx, node("B", "A"))
	require.NoError(t, err)
	require.NotNil(t, u.Pass)
	assert.Equal(t, []string{"B"}, u.Pass.Affected())

	_, err = e.Settle(u.Pass, nil)
	require.NoError(t, err)
	_, err = e.Settle(u.Pass, nil)
	assert.Error(t, err, "a pass settles once")
}

func TestDiff(t *testing.T) {
	before := []dag.Node{node("A"), node("B", "A"), node("C", "B"), node("D")}
	after := []dag.Node{node("A"), node("C", "A", "D"), node("D"), {ID: "E", ParentIDs: []string{"C"}}}

	d := diff(before, after)
	assert.Equal(t, []string{"B"}, d.removed)
	assert.Equal(t, []string{"C", "E"}, d.touched)
	assert.Equal(t, []string{"C"}, d.relocate)
	assert.Equal(t, []mutate.Event{
		{Kind: mutate.LinkAdded, NodeID: "C", ParentID: "A"},
		{Kind: mutate.LinkAdded, NodeID: "C", ParentID: "D"},
		{Kind: mutate.NodeAdded, NodeID: "E"},
		{Kind: mutate.LinkAdded, NodeID: "E", ParentID: "C"},
		{Kind: mutate.LinkRemoved, NodeID: "C", ParentID: "B"},
		{Kind: mutate.NodeRemoved, NodeID: "B"},
	}, d.events)
}
