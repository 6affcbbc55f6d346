package editor

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
	"github.com/matzehuels/dagedit/pkg/layout"
	"github.com/matzehuels/dagedit/pkg/observability"
)

// AddNode validates and inserts n. An empty id is replaced by a random
// UUID; the id actually used is Update.NodeIDs[0].
func (e *Editor) AddNode(ctx context.Context, n dag.Node) (Update, error) {
	const op = "add-node"
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := apperr.ValidateNodeID(n.ID); err != nil {
		return Update{}, e.reject(ctx, op, n.ID, err)
	}
	if e.store.Has(n.ID) {
		return Update{}, e.reject(ctx, op, n.ID, apperr.New(apperr.ErrCodeDuplicateNode, "node %q already exists", n.ID))
	}
	if len(n.ParentIDs) > 0 {
		// Validate against the document with the new node present but
		// still unlinked.
		tentative := n.Clone()
		tentative.ParentIDs = nil
		nodes := append(e.store.Nodes(), tentative)
		if err := e.validator.ValidateSetParents(ctx, nodes, n.ID, n.ParentIDs); err != nil {
			return Update{}, e.reject(ctx, op, n.ID, err)
		}
	}

	id, err := e.mutator.AddNode(n)
	if err != nil {
		return Update{}, e.reject(ctx, op, n.ID, err)
	}
	return e.commit(ctx, op, []string{id}, layout.Added(id)), nil
}

// UpdateNode replaces the label, data and position of a node. Parents are
// left untouched. A position, when given, also replaces the cached one and
// is restored by undo; without one the stored position is kept. No layout
// pass runs.
func (e *Editor) UpdateNode(ctx context.Context, n dag.Node) (Update, error) {
	const op = "update-node"
	if err := apperr.ValidateLabel(n.Label); err != nil {
		return Update{}, e.reject(ctx, op, n.ID, err)
	}
	if cur, ok := e.store.Node(n.ID); ok {
		if n.Position == nil {
			n.Position = cur.Position
		} else if err := e.recordPosition(cur); err != nil {
			return Update{}, e.reject(ctx, op, n.ID, err)
		}
	}
	if err := e.mutator.UpdateNode(n); err != nil {
		return Update{}, e.reject(ctx, op, n.ID, err)
	}
	if n.Position != nil {
		e.stabilizer.Cache().Set(n.ID, *n.Position)
	}
	observability.Edit().OnMutation(ctx, op, []string{n.ID})
	return Update{Op: op, NodeIDs: []string{n.ID}}, nil
}

// recordPosition copies the cached position of n into the store, so the
// snapshot taken before an edit holds the position undo has to restore.
func (e *Editor) recordPosition(n dag.Node) error {
	p, ok := e.stabilizer.Cache().Get(n.ID)
	if !ok || (n.Position != nil && *n.Position == p) {
		return nil
	}
	n.Position = &p
	if err := e.store.Replace(n); err != nil {
		return apperr.Wrap(apperr.ErrCodeInternal, err, "record position of %q", n.ID)
	}
	return nil
}

// MoveNode places a node by hand. It changes the cached position only and
// is not recorded in history.
func (e *Editor) MoveNode(ctx context.Context, id string, p dag.Point) error {
	if !e.store.Has(id) {
		return e.refuse(ctx, "move-node", id, apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", id))
	}
	e.stabilizer.Cache().Set(id, p)
	return nil
}

// DeleteNode removes a node and strips it from every parent list. Its
// former children are laid out again; one undo restores everything.
func (e *Editor) DeleteNode(ctx context.Context, id string) (Update, error) {
	const op = "delete-node"
	if !e.store.Has(id) {
		return Update{}, e.reject(ctx, op, id, apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", id))
	}
	children := slices.Clone(e.store.Guard().Children(id))
	before := e.firstParents(children)
	if p, ok := e.stabilizer.Cache().Get(id); ok {
		e.tomb[id] = p
	}

	if err := e.mutator.RemoveNode(id); err != nil {
		return Update{}, e.reject(ctx, op, id, err)
	}
	e.collapsed.OnNodeDeleted(id)

	change := layout.Removed(children...).WithRelocate(e.relocated(before)...)
	return e.commit(ctx, op, append([]string{id}, children...), change), nil
}

// AddParent makes parent an additional parent of child.
func (e *Editor) AddParent(ctx context.Context, child, parent string) (Update, error) {
	const op = "add-parent"
	if err := e.validator.ValidateAddEdge(ctx, e.store.Nodes(), parent, child); err != nil {
		return Update{}, e.reject(ctx, op, child, err)
	}
	return e.relink(ctx, op, child, func() error { return e.mutator.AddParent(child, parent) })
}

// RemoveParent drops parent from child's parents. Removing a link cannot
// violate any policy, so no validation runs.
func (e *Editor) RemoveParent(ctx context.Context, child, parent string) (Update, error) {
	return e.relink(ctx, "remove-parent", child, func() error { return e.mutator.RemoveParent(child, parent) })
}

// Reparent replaces all parents of child with newParent.
func (e *Editor) Reparent(ctx context.Context, child, newParent string) (Update, error) {
	const op = "reparent"
	if err := e.validator.ValidateReparent(ctx, e.store.Nodes(), child, newParent); err != nil {
		return Update{}, e.reject(ctx, op, child, err)
	}
	return e.relink(ctx, op, child, func() error { return e.mutator.SetParents(child, []string{newParent}) })
}

// SetParents replaces child's parent list. Max-parents applies to the
// final list.
func (e *Editor) SetParents(ctx context.Context, child string, parents []string) (Update, error) {
	const op = "set-parents"
	if err := e.validator.ValidateSetParents(ctx, e.store.Nodes(), child, parents); err != nil {
		return Update{}, e.reject(ctx, op, child, err)
	}
	return e.relink(ctx, op, child, func() error { return e.mutator.SetParents(child, parents) })
}

// Detach clears all parents of child, turning it into a root.
func (e *Editor) Detach(ctx context.Context, child string) (Update, error) {
	return e.relink(ctx, "detach", child, func() error { return e.mutator.Detach(child) })
}

// relink applies a parent-list change to child. A change that leaves the
// list as it was records nothing and runs no layout pass.
func (e *Editor) relink(ctx context.Context, op, child string, mutation func() error) (Update, error) {
	before := e.firstParents([]string{child})
	clock := e.store.Clock()
	if err := mutation(); err != nil {
		return Update{}, e.reject(ctx, op, child, err)
	}
	if e.store.Clock() == clock {
		return Update{Op: op}, nil
	}
	change := layout.Reparented(child).WithRelocate(e.relocated(before)...)
	return e.commit(ctx, op, []string{child}, change), nil
}

// firstParents maps each id to its current first parent, "" for roots.
func (e *Editor) firstParents(ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = first(e.store.Parents(id))
	}
	return out
}

// relocated returns the ids from before whose first parent changed to
// another node, in insertion order.
func (e *Editor) relocated(before map[string]string) []string {
	var out []string
	for _, id := range e.store.IDs() {
		old, ok := before[id]
		if !ok {
			continue
		}
		if now := first(e.store.Parents(id)); now != "" && now != old {
			out = append(out, id)
		}
	}
	return out
}

func first(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
