package mutate

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// SnapshotHook receives the store state captured right before a mutation.
type SnapshotHook func(before dag.Snapshot)

// Option configures an [Engine].
type Option func(*Engine)

// WithSnapshotHook installs the hook called before every mutation.
func WithSnapshotHook(h SnapshotHook) Option { return func(e *Engine) { e.beforeMutate = h } }

// WithObserver subscribes o from the start.
func WithObserver(o Observer) Option { return func(e *Engine) { e.subscribe(o) } }

// Engine applies mutations to a store. See the package documentation for the
// contract.
type Engine struct {
	store        *dag.Store
	beforeMutate SnapshotHook
	observers    map[int]Observer
	nextID       int
}

// New creates an engine over store.
func New(store *dag.Store, opts ...Option) *Engine {
	e := &Engine{store: store, observers: make(map[int]Observer)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() *dag.Store { return e.store }

// SetSnapshotHook replaces the snapshot hook. Nil disables it.
func (e *Engine) SetSnapshotHook(h SnapshotHook) { e.beforeMutate = h }

// Subscribe registers o and returns a function that removes it again.
func (e *Engine) Subscribe(o Observer) (unsubscribe func()) {
	id := e.subscribe(o)
	return func() { delete(e.observers, id) }
}

func (e *Engine) subscribe(o Observer) int {
	id := e.nextID
	e.nextID++
	e.observers[id] = o
	return id
}

// Publish delivers ev to all observers in subscription order. The editor
// uses it for ValidationFailed events.
func (e *Engine) Publish(ev Event) {
	ids := make([]int, 0, len(e.observers))
	for id := range e.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		e.observers[id].OnEvent(ev)
	}
}

func (e *Engine) snapshot() {
	if e.beforeMutate != nil {
		e.beforeMutate(e.store.Snapshot())
	}
}

// AddNode inserts n and returns its id. An empty id is replaced by a random
// UUID. Parents must exist.
func (e *Engine) AddNode(n dag.Node) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	} else if err := apperr.ValidateNodeID(n.ID); err != nil {
		return "", err
	}
	if e.store.Has(n.ID) {
		return "", apperr.New(apperr.ErrCodeDuplicateNode, "node %q already exists", n.ID)
	}
	if err := e.requireParents(n.ID, n.ParentIDs); err != nil {
		return "", err
	}

	e.snapshot()
	if err := e.store.Insert(n); err != nil {
		return "", err
	}
	e.Publish(Event{Kind: NodeAdded, NodeID: n.ID})
	for _, p := range n.ParentIDs {
		e.Publish(Event{Kind: LinkAdded, NodeID: n.ID, ParentID: p})
	}
	return n.ID, nil
}

// UpdateNode replaces the label, data and position of an existing node. The
// parent list is structural and is left untouched; use the link operations
// to change it.
func (e *Engine) UpdateNode(n dag.Node) error {
	cur, ok := e.store.Node(n.ID)
	if !ok {
		return notFound(n.ID)
	}
	if err := apperr.ValidateLabel(n.Label); err != nil {
		return err
	}
	n.ParentIDs = cur.ParentIDs

	e.snapshot()
	if err := e.store.Replace(n); err != nil {
		return err
	}
	e.Publish(Event{Kind: NodeUpdated, NodeID: n.ID})
	return nil
}

// RemoveNode deletes the node and strips it from every parent list in the
// same mutation, so a single undo restores both.
func (e *Engine) RemoveNode(id string) error {
	if !e.store.Has(id) {
		return notFound(id)
	}

	e.snapshot()
	severed, err := e.store.Delete(id)
	if err != nil {
		return err
	}
	for _, child := range severed {
		e.Publish(Event{Kind: LinkRemoved, NodeID: child, ParentID: id})
	}
	e.Publish(Event{Kind: NodeRemoved, NodeID: id})
	return nil
}

// AddParent appends parent to child's parent list.
func (e *Engine) AddParent(child, parent string) error {
	cur, ok := e.store.Node(child)
	if !ok {
		return notFound(child)
	}
	if !e.store.Has(parent) {
		return notFound(parent)
	}
	if cur.HasParent(parent) {
		return apperr.New(apperr.ErrCodeDuplicateEdge, "%q is already a parent of %q", parent, child)
	}
	return e.SetParents(child, append(cur.ParentIDs, parent))
}

// RemoveParent drops parent from child's parent list.
func (e *Engine) RemoveParent(child, parent string) error {
	cur, ok := e.store.Node(child)
	if !ok {
		return notFound(child)
	}
	if !cur.HasParent(parent) {
		return apperr.New(apperr.ErrCodeNodeNotFound, "%q is not a parent of %q", parent, child)
	}
	next := slices.DeleteFunc(cur.ParentIDs, func(p string) bool { return p == parent })
	return e.SetParents(child, next)
}

// SetParents replaces child's parent list. Parents kept from the old list
// keep their relative order; events are emitted for the symmetric
// difference, additions first.
func (e *Engine) SetParents(child string, parents []string) error {
	cur, ok := e.store.Node(child)
	if !ok {
		return notFound(child)
	}
	if err := e.requireParents(child, parents); err != nil {
		return err
	}

	var added, removed []string
	for _, p := range parents {
		if !cur.HasParent(p) {
			added = append(added, p)
		}
	}
	for _, p := range cur.ParentIDs {
		if !slices.Contains(parents, p) {
			removed = append(removed, p)
		}
	}
	if len(added) == 0 && len(removed) == 0 && slices.Equal(cur.ParentIDs, parents) {
		return nil
	}

	e.snapshot()
	if err := e.store.SetParentIDs(child, parents); err != nil {
		return err
	}
	for _, p := range added {
		e.Publish(Event{Kind: LinkAdded, NodeID: child, ParentID: p})
	}
	for _, p := range removed {
		e.Publish(Event{Kind: LinkRemoved, NodeID: child, ParentID: p})
	}
	return nil
}

// Detach clears all parents of child, turning it into a root.
func (e *Engine) Detach(child string) error {
	return e.SetParents(child, nil)
}

func (e *Engine) requireParents(child string, parents []string) error {
	seen := make(map[string]bool, len(parents))
	for _, p := range parents {
		if seen[p] {
			return apperr.New(apperr.ErrCodeDuplicateEdge, "%q listed twice as parent of %q", p, child)
		}
		seen[p] = true
		if p != child && !e.store.Has(p) {
			return notFound(p)
		}
	}
	return nil
}

func notFound(id string) error {
	return apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", id)
}
