package dag

import (
	"errors"
	"slices"

	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

var (
	// ErrInvalidNodeID is returned by [Store.Insert] and [Store.Restore] when
	// the node ID is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Store.Insert] and [Store.Restore] when
	// a node with the same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned when an operation names a node that is not
	// in the store.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownParent is returned when a parent list references a node that
	// is not in the store. Dangling parent references are never persisted.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrDuplicateParent is returned when a parent list names the same parent
	// twice. Parent lists are ordered sets.
	ErrDuplicateParent = errors.New("duplicate parent")

	// ErrSelfParent is returned by [CheckInvariants] when a node lists itself
	// as a parent and self-loops are not allowed.
	ErrSelfParent = errors.New("node lists itself as parent")

	// ErrGraphHasCycle is returned by [CheckInvariants] when a cycle is
	// detected and cycles are not allowed. Cycles are detected using
	// depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Store owns the canonical node collection.
//
// Nodes are kept by id together with their insertion order, which every
// listing preserves so traversals and snapshots are deterministic. Each
// structural change advances a logical clock that snapshots carry.
//
// The zero value is not usable - use New to create a Store.
type Store struct {
	nodes map[string]*Node
	order []string
	clock uint64
}

// New creates an empty store.
func New() *Store {
	return &Store{nodes: make(map[string]*Node)}
}

// FromNodes creates a store holding clones of nodes. It fails on empty or
// duplicate ids; other invariants are the caller's responsibility, see
// [CheckInvariants].
func FromNodes(nodes []Node) (*Store, error) {
	s := New()
	if err := s.Restore(nodes); err != nil {
		return nil, err
	}
	return s, nil
}

// Clock returns the logical clock. It advances on every change.
func (s *Store) Clock() uint64 { return s.clock }

// Len returns the number of nodes.
func (s *Store) Len() int { return len(s.order) }

// Has reports whether a node with the id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// IDs returns all node ids in insertion order.
func (s *Store) IDs() []string { return slices.Clone(s.order) }

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.order))
	for i, id := range s.order {
		out[i] = s.nodes[id].Clone()
	}
	return out
}

// Parents returns a copy of the node's parent ids, or nil if unknown.
func (s *Store) Parents(id string) []string {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.ParentIDs)
}

// Children returns the ids of nodes that list id as a parent, in insertion
// order. This is an O(N) scan; use a [Guard] for repeated queries.
func (s *Store) Children(id string) []string {
	var out []string
	for _, cid := range s.order {
		if s.nodes[cid].HasParent(id) {
			out = append(out, cid)
		}
	}
	return out
}

// Guard builds a read-only query view over the current structure.
func (s *Store) Guard() *Guard { return NewGuard(s.Nodes()) }

// Insert adds a node. The node's parents must already exist (or be the node
// itself) and must not repeat.
func (s *Store) Insert(n Node) error {
	if n.ID == "" {
		return apperr.Wrap(apperr.ErrCodeInvalidNodeID, ErrInvalidNodeID, "insert")
	}
	if _, exists := s.nodes[n.ID]; exists {
		return apperr.Wrap(apperr.ErrCodeDuplicateNode, ErrDuplicateNodeID, "insert %q", n.ID)
	}
	if err := s.checkParents(n.ID, n.ParentIDs, true); err != nil {
		return err
	}
	c := n.Clone()
	s.nodes[c.ID] = &c
	s.order = append(s.order, c.ID)
	s.clock++
	return nil
}

// Replace overwrites an existing node, parents included.
func (s *Store) Replace(n Node) error {
	if _, ok := s.nodes[n.ID]; !ok {
		return apperr.Wrap(apperr.ErrCodeNodeNotFound, ErrUnknownNode, "replace %q", n.ID)
	}
	if err := s.checkParents(n.ID, n.ParentIDs, false); err != nil {
		return err
	}
	c := n.Clone()
	s.nodes[c.ID] = &c
	s.clock++
	return nil
}

// SetParentIDs replaces the node's parent list.
func (s *Store) SetParentIDs(id string, parents []string) error {
	n, ok := s.nodes[id]
	if !ok {
		return apperr.Wrap(apperr.ErrCodeNodeNotFound, ErrUnknownNode, "set parents of %q", id)
	}
	if err := s.checkParents(id, parents, false); err != nil {
		return err
	}
	if len(parents) == 0 {
		n.ParentIDs = nil
	} else {
		n.ParentIDs = slices.Clone(parents)
	}
	s.clock++
	return nil
}

// Delete removes the node and strips its id from every remaining parent list
// in the same step, so the store never holds a dangling reference. It returns
// the ids of the children whose link to the removed node was severed.
func (s *Store) Delete(id string) ([]string, error) {
	if _, ok := s.nodes[id]; !ok {
		return nil, apperr.Wrap(apperr.ErrCodeNodeNotFound, ErrUnknownNode, "delete %q", id)
	}
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == id })

	var severed []string
	for _, cid := range s.order {
		c := s.nodes[cid]
		if !c.HasParent(id) {
			continue
		}
		c.ParentIDs = slices.DeleteFunc(c.ParentIDs, func(p string) bool { return p == id })
		if len(c.ParentIDs) == 0 {
			c.ParentIDs = nil
		}
		severed = append(severed, cid)
	}
	s.clock++
	return severed, nil
}

// Snapshot returns a deep copy of the full collection tagged with the clock.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Clock: s.clock, Nodes: s.Nodes()}
}

// Restore replaces the whole collection with clones of nodes. Only id uniqueness
// and non-empty ids are checked here; callers importing untrusted data should run
// [CheckInvariants] first.
func (s *Store) Restore(nodes []Node) error {
	next := make(map[string]*Node, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return apperr.Wrap(apperr.ErrCodeInvalidNodeID, ErrInvalidNodeID, "restore")
		}
		if _, dup := next[n.ID]; dup {
			return apperr.Wrap(apperr.ErrCodeDuplicateNode, ErrDuplicateNodeID, "restore %q", n.ID)
		}
		c := n.Clone()
		next[c.ID] = &c
		order = append(order, c.ID)
	}
	s.nodes = next
	s.order = order
	s.clock++
	return nil
}

// RestoreSnapshot restores the collection captured in snap.
func (s *Store) RestoreSnapshot(snap Snapshot) error { return s.Restore(snap.Nodes) }

func (s *Store) checkParents(id string, parents []string, inserting bool) error {
	seen := make(map[string]bool, len(parents))
	for _, p := range parents {
		if seen[p] {
			return apperr.Wrap(apperr.ErrCodeDuplicateEdge, ErrDuplicateParent, "%q lists %q twice", id, p)
		}
		seen[p] = true
		if p == id && inserting {
			continue
		}
		if _, ok := s.nodes[p]; !ok {
			return apperr.Wrap(apperr.ErrCodeNodeNotFound, ErrUnknownParent, "%q references %q", id, p)
		}
	}
	return nil
}
