package editor

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dagedit/pkg/collapse"
	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
	"github.com/matzehuels/dagedit/pkg/history"
	"github.com/matzehuels/dagedit/pkg/layout"
	"github.com/matzehuels/dagedit/pkg/mutate"
	"github.com/matzehuels/dagedit/pkg/observability"
	"github.com/matzehuels/dagedit/pkg/validate"
)

// Options configures an [Editor].
type Options struct {
	Policy    validate.Policy
	History   history.Options
	Algorithm layout.Algorithm // Nil keeps nodes at their seeded positions
	Viewport  layout.Viewport
	Seed      int64

	// ManualLayout hands layout passes to the host; see the package
	// documentation.
	ManualLayout bool

	// Logger receives debug output for edits and rejections. Nil discards.
	Logger *log.Logger
}

// Update describes the effect of one operation.
type Update struct {
	Op        string
	NodeIDs   []string       // Nodes the operation touched directly; for AddNode the new id
	Change    layout.Change  // Change handed to the stabilizer
	Layout    layout.Outcome // Zero when no pass ran or in manual mode
	Pass      *layout.Pass   // Planned pass, manual mode only
	LayoutErr error          // Set when the layout pass failed
}

// Editor owns a document and its editing state.
type Editor struct {
	store      *dag.Store
	validator  *validate.Validator
	history    *history.History
	mutator    *mutate.Engine
	collapsed  *collapse.State
	stabilizer *layout.Stabilizer
	manual     bool
	tomb       map[string]dag.Point // last positions of deleted nodes
	logger     *log.Logger
}

// New creates an editor over an empty document.
func New(opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	e := &Editor{
		store:     dag.New(),
		validator: validate.New(opts.Policy),
		history:   history.New(opts.History),
		collapsed: collapse.New(),
		stabilizer: layout.NewStabilizer(opts.Algorithm, layout.Options{
			Viewport: opts.Viewport,
			Seed:     opts.Seed,
			Logger:   logger,
		}),
		manual: opts.ManualLayout,
		tomb:   make(map[string]dag.Point),
		logger: logger,
	}
	e.mutator = mutate.New(e.store, mutate.WithSnapshotHook(e.history.SaveState))
	return e
}

// =============================================================================
// Document
// =============================================================================

// Load replaces the document with nodes after checking them against the
// active policy. History, collapse state and cached positions are cleared;
// node positions, when present, prime the position cache. Load runs no
// layout pass; call [Editor.Sync] afterwards.
func (e *Editor) Load(nodes []dag.Node) error {
	if err := dag.CheckInvariants(nodes, e.validator.Policy().InvariantOptions()); err != nil {
		return err
	}
	if err := e.store.Restore(nodes); err != nil {
		return err
	}
	e.history.Clear()
	e.collapsed.Reset()
	e.stabilizer.Reset()
	clear(e.tomb)
	primed := e.stabilizer.Cache().Prime(nodes)
	e.logger.Debug("document loaded", "nodes", len(nodes), "primed", primed)
	return nil
}

// Sync lays out whatever has no cached position yet: the whole document
// before the first pass, otherwise just the uncached nodes.
func (e *Editor) Sync(ctx context.Context) (Update, error) {
	u := Update{Op: "sync", Change: layout.Full()}
	if e.stabilizer.Initialized() {
		var missing []string
		for _, id := range e.store.IDs() {
			if _, ok := e.stabilizer.Cache().Get(id); !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 {
			return u, nil
		}
		u.Change = layout.Added(missing...)
		u.NodeIDs = missing
	}
	e.runLayout(ctx, &u)
	return u, u.LayoutErr
}

// Nodes returns copies of all nodes in insertion order.
func (e *Editor) Nodes() []dag.Node { return e.store.Nodes() }

// Node returns a copy of one node.
func (e *Editor) Node(id string) (dag.Node, bool) { return e.store.Node(id) }

// Len returns the number of nodes.
func (e *Editor) Len() int { return e.store.Len() }

// Clock returns the store's logical clock. It advances on every change to
// the document.
func (e *Editor) Clock() uint64 { return e.store.Clock() }

// Snapshot returns a deep copy of the document.
func (e *Editor) Snapshot() dag.Snapshot { return e.store.Snapshot() }

// Guard returns a query view over the current structure.
func (e *Editor) Guard() *dag.Guard { return e.store.Guard() }

// PlacedNodes returns copies of all nodes with Position set from the
// position cache, ready to be saved.
func (e *Editor) PlacedNodes() []dag.Node {
	nodes := e.store.Nodes()
	for i := range nodes {
		if p, ok := e.stabilizer.Cache().Get(nodes[i].ID); ok {
			nodes[i].Position = &p
		}
	}
	return nodes
}

// VisibleNodes returns copies of the nodes not hidden by a collapsed
// ancestor.
func (e *Editor) VisibleNodes() []dag.Node {
	return slices.DeleteFunc(e.store.Nodes(), func(n dag.Node) bool {
		return e.collapsed.IsHidden(n.ID)
	})
}

// Policy returns the active validation policy.
func (e *Editor) Policy() validate.Policy { return e.validator.Policy() }

// SetPolicy replaces the validation policy. Existing structure is not
// re-checked.
func (e *Editor) SetPolicy(p validate.Policy) { e.validator.SetPolicy(p) }

// Subscribe registers o for mutation events, including events synthesized
// for undo and redo, and returns a function that removes it.
func (e *Editor) Subscribe(o mutate.Observer) (unsubscribe func()) { return e.mutator.Subscribe(o) }

// =============================================================================
// History
// =============================================================================

// CanUndo reports whether there is something to undo.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether there is something to redo.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Dirty reports whether the document has undoable changes.
func (e *Editor) Dirty() bool { return e.history.Dirty() }

// HistoryLen returns the sizes of the undo and redo stacks.
func (e *Editor) HistoryLen() (undo, redo int) { return e.history.Len() }

// Undo restores the state before the last edit. An empty history yields a
// NOTHING_TO_UNDO error, which hosts usually ignore.
func (e *Editor) Undo(ctx context.Context) (Update, error) {
	prev, ok := e.history.Undo(e.store.Snapshot())
	if !ok {
		return Update{}, apperr.New(apperr.ErrCodeNothingToUndo, "nothing to undo")
	}
	return e.restore(ctx, "undo", prev)
}

// Redo reapplies the last undone edit.
func (e *Editor) Redo(ctx context.Context) (Update, error) {
	next, ok := e.history.Redo(e.store.Snapshot())
	if !ok {
		return Update{}, apperr.New(apperr.ErrCodeNothingToRedo, "nothing to redo")
	}
	return e.restore(ctx, "redo", next)
}

func (e *Editor) restore(ctx context.Context, op string, snap dag.Snapshot) (Update, error) {
	d := diff(e.store.Nodes(), snap.Nodes)
	for _, id := range d.removed {
		if p, ok := e.stabilizer.Cache().Get(id); ok {
			e.tomb[id] = p
		}
	}
	if err := e.store.RestoreSnapshot(snap); err != nil {
		return Update{}, apperr.Wrap(apperr.ErrCodeInternal, err, "%s", op)
	}
	for _, id := range d.removed {
		e.collapsed.OnNodeDeleted(id)
	}
	for _, id := range d.moved {
		if n, ok := e.store.Node(id); ok {
			e.stabilizer.Cache().Set(id, *n.Position)
		}
	}
	for _, ev := range d.events {
		e.mutator.Publish(ev)
	}

	undo, redo := e.history.Len()
	observability.Edit().OnHistory(ctx, op, undo, redo)
	e.logger.Debug("history step", "op", op, "undo", undo, "redo", redo, "touched", len(d.touched))

	ids := d.touched
	for _, id := range d.moved {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	change := layout.Reparented(d.touched...).WithRelocate(d.relocate...)
	return e.commit(ctx, op, ids, change), nil
}

// =============================================================================
// Shared plumbing
// =============================================================================

// commit runs the post-mutation steps shared by all structural operations.
func (e *Editor) commit(ctx context.Context, op string, ids []string, change layout.Change) Update {
	if dropped := e.collapsed.Refresh(e.store.Guard()); len(dropped) > 0 {
		e.logger.Debug("collapse entries dropped", "ids", dropped)
	}
	observability.Edit().OnMutation(ctx, op, ids)
	e.logger.Debug("edit applied", "op", op, "nodes", ids)

	u := Update{Op: op, NodeIDs: ids, Change: change}
	e.runLayout(ctx, &u)
	return u
}

func (e *Editor) runLayout(ctx context.Context, u *Update) {
	nodes := e.store.Nodes()
	for i := range nodes {
		if p, ok := e.tomb[nodes[i].ID]; ok {
			nodes[i].Position = &p
			delete(e.tomb, nodes[i].ID)
		}
	}
	if e.manual {
		u.Pass = e.stabilizer.Plan(nodes, u.Change)
		return
	}
	u.Layout, u.LayoutErr = e.stabilizer.Apply(ctx, nodes, u.Change)
}

// reject reports a refused structural operation to subscribers, hooks and
// the log, and returns err unchanged.
func (e *Editor) reject(ctx context.Context, op, id string, err error) error {
	e.mutator.Publish(mutate.Event{Kind: mutate.ValidationFailed, NodeID: id, Err: err})
	return e.refuse(ctx, op, id, err)
}

// refuse reports a refused operation to hooks and the log only.
func (e *Editor) refuse(ctx context.Context, op, id string, err error) error {
	code := apperr.GetCode(err)
	observability.Edit().OnRejected(ctx, op, string(code))
	e.logger.Debug("edit rejected", "op", op, "node", id, "code", code, "err", err)
	return err
}
