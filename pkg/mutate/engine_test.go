package mutate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

func newChain(t *testing.T, opts ...Option) (*Engine, *Recorder) {
	t.Helper()
	s := dag.New()
	require.NoError(t, s.Insert(dag.Node{ID: "A"}))
	require.NoError(t, s.Insert(dag.Node{ID: "B", ParentIDs: []string{"A"}}))
	require.NoError(t, s.Insert(dag.Node{ID: "C", ParentIDs: []string{"B"}}))
	rec := &Recorder{}
	e := New(s, append(opts, WithObserver(rec))...)
	return e, rec
}

func TestAddNode(t *testing.T) {
	e, rec := newChain(t)

	id, err := e.AddNode(dag.Node{ID: "D", ParentIDs: []string{"A", "C"}})
	require.NoError(t, err)
	assert.Equal(t, "D", id)
	assert.Equal(t, []EventKind{NodeAdded, LinkAdded, LinkAdded}, rec.Kinds())
	assert.Equal(t, "C", rec.Events[2].ParentID)

	_, err = e.AddNode(dag.Node{ID: "D"})
	assert.Equal(t, apperr.ErrCodeDuplicateNode, apperr.GetCode(err))

	_, err = e.AddNode(dag.Node{ID: "E", ParentIDs: []string{"ghost"}})
	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(err))

	_, err = e.AddNode(dag.Node{ID: " padded "})
	assert.Equal(t, apperr.ErrCodeInvalidNodeID, apperr.GetCode(err))
}

func TestAddNodeGeneratesID(t *testing.T) {
	e, _ := newChain(t)
	id, err := e.AddNode(dag.Node{Label: "fresh"})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.True(t, e.Store().Has(id))
}

func TestUpdateNodeKeepsParents(t *testing.T) {
	e, rec := newChain(t)
	err := e.UpdateNode(dag.Node{ID: "C", Label: "leaf", ParentIDs: []string{"A"}, Position: &dag.Point{X: 3}})
	require.NoError(t, err)

	c, _ := e.Store().Node("C")
	assert.Equal(t, "leaf", c.Label)
	assert.Equal(t, []string{"B"}, c.ParentIDs)
	assert.Equal(t, 3.0, c.Position.X)
	assert.Equal(t, []EventKind{NodeUpdated}, rec.Kinds())

	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(e.UpdateNode(dag.Node{ID: "ghost"})))
}

func TestRemoveNode(t *testing.T) {
	e, rec := newChain(t)
	_, err := e.AddNode(dag.Node{ID: "D", ParentIDs: []string{"B"}})
	require.NoError(t, err)
	rec.Reset()

	require.NoError(t, e.RemoveNode("B"))
	assert.Equal(t, []Event{
		{Kind: LinkRemoved, NodeID: "C", ParentID: "B"},
		{Kind: LinkRemoved, NodeID: "D", ParentID: "B"},
		{Kind: NodeRemoved, NodeID: "B"},
	}, rec.Events)

	for _, n := range e.Store().Nodes() {
		assert.NotContains(t, n.ParentIDs, "B", "node %s", n.ID)
	}
	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(e.RemoveNode("B")))
}

func TestAddRemoveParent(t *testing.T) {
	e, rec := newChain(t)

	require.NoError(t, e.AddParent("C", "A"))
	assert.Equal(t, []string{"B", "A"}, e.Store().Parents("C"))
	assert.Equal(t, []Event{{Kind: LinkAdded, NodeID: "C", ParentID: "A"}}, rec.Events)

	assert.Equal(t, apperr.ErrCodeDuplicateEdge, apperr.GetCode(e.AddParent("C", "A")))
	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(e.AddParent("C", "ghost")))
	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(e.AddParent("ghost", "A")))

	rec.Reset()
	require.NoError(t, e.RemoveParent("C", "B"))
	assert.Equal(t, []string{"A"}, e.Store().Parents("C"))
	assert.Equal(t, []Event{{Kind: LinkRemoved, NodeID: "C", ParentID: "B"}}, rec.Events)

	assert.Equal(t, apperr.ErrCodeNodeNotFound, apperr.GetCode(e.RemoveParent("C", "B")))
}

func TestSetParentsAddedBeforeRemoved(t *testing.T) {
	e, rec := newChain(t)
	_, err := e.AddNode(dag.Node{ID: "X"})
	require.NoError(t, err)
	rec.Reset()

	// C: [B] -> [A, X]
	require.NoError(t, e.SetParents("C", []string{"A", "X"}))
	assert.Equal(t, []Event{
		{Kind: LinkAdded, NodeID: "C", ParentID: "A"},
		{Kind: LinkAdded, NodeID: "C", ParentID: "X"},
		{Kind: LinkRemoved, NodeID: "C", ParentID: "B"},
	}, rec.Events)
	assert.Equal(t, []string{"A", "X"}, e.Store().Parents("C"))
}

func TestSetParentsObserverNeverSeesOrphan(t *testing.T) {
	e, _ := newChain(t)
	orphaned := false
	count := len(e.Store().Parents("C"))
	e.Subscribe(ObserverFunc(func(ev Event) {
		switch ev.Kind {
		case LinkAdded:
			count++
		case LinkRemoved:
			count--
		}
		if count == 0 {
			orphaned = true
		}
	}))
	require.NoError(t, e.SetParents("C", []string{"A"}))
	assert.False(t, orphaned)
	assert.Equal(t, 1, count)
}

func TestDetach(t *testing.T) {
	e, rec := newChain(t)
	require.NoError(t, e.Detach("C"))
	c, _ := e.Store().Node("C")
	assert.True(t, c.IsRoot())
	assert.Equal(t, []EventKind{LinkRemoved}, rec.Kinds())

	// Detaching a root changes nothing and records nothing.
	rec.Reset()
	require.NoError(t, e.Detach("A"))
	assert.Empty(t, rec.Events)
}

func TestSnapshotHook(t *testing.T) {
	var snaps []dag.Snapshot
	e, _ := newChain(t, WithSnapshotHook(func(s dag.Snapshot) { snaps = append(snaps, s) }))

	require.NoError(t, e.AddParent("C", "A"))
	require.Len(t, snaps, 1)
	c, _ := snaps[0].Node("C")
	assert.Equal(t, []string{"B"}, c.ParentIDs, "hook must see the pre-change state")

	// Refused calls never reach the hook.
	_ = e.AddParent("C", "A")
	_ = e.RemoveNode("ghost")
	_, _ = e.AddNode(dag.Node{ID: "A"})
	assert.Len(t, snaps, 1)

	require.NoError(t, e.RemoveNode("B"))
	assert.Len(t, snaps, 2)
	assert.Equal(t, 3, snaps[1].Len())
}

func TestUnsubscribe(t *testing.T) {
	e, _ := newChain(t)
	var n int
	stop := e.Subscribe(ObserverFunc(func(Event) { n++ }))
	require.NoError(t, e.Detach("C"))
	stop()
	require.NoError(t, e.AddParent("C", "A"))
	assert.Equal(t, 1, n)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "link-added", LinkAdded.String())
	assert.Equal(t, "validation-failed", ValidationFailed.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
