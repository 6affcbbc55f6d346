package layout

import "fmt"

// ChangeKind classifies a structural change for the stabilizer.
type ChangeKind int

const (
	KindFull ChangeKind = iota
	KindAdd
	KindRemove
	KindReparent
)

func (k ChangeKind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	case KindReparent:
		return "reparent"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// ParseChangeKind converts a name produced by String back into a kind.
func ParseChangeKind(s string) (ChangeKind, error) {
	for _, k := range []ChangeKind{KindFull, KindAdd, KindRemove, KindReparent} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown change kind %q", s)
}

// Change describes what happened to the graph since the last pass.
//
// NodeIDs are the directly affected nodes: added nodes, children whose
// parent list changed, or children severed from a removed node. Ids that no
// longer exist are ignored.
//
// Relocate lists affected nodes whose first parent changed. Before the pass
// each of them, together with its descendants, is translated so that it sits
// below its new first parent; the centroid anchoring then keeps the subtree
// at that new spot.
type Change struct {
	Kind     ChangeKind
	NodeIDs  []string
	Relocate []string
}

// Full requests a whole-graph layout.
func Full() Change { return Change{Kind: KindFull} }

// Added reports newly inserted nodes.
func Added(ids ...string) Change { return Change{Kind: KindAdd, NodeIDs: ids} }

// Removed reports the children severed by a node removal.
func Removed(children ...string) Change { return Change{Kind: KindRemove, NodeIDs: children} }

// Reparented reports children whose parent lists changed.
func Reparented(ids ...string) Change { return Change{Kind: KindReparent, NodeIDs: ids} }

// WithRelocate returns a copy of c with Relocate set to ids.
func (c Change) WithRelocate(ids ...string) Change {
	c.Relocate = ids
	return c
}
