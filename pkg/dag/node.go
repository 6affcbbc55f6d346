package dag

import (
	"maps"
	"slices"
)

// Metadata stores the opaque payload attached to a node. The store never
// interprets it; clones copy the map but not the values inside it.
type Metadata map[string]any

// Point is a 2D canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// Node is a vertex of the hierarchy. Structure is stored child-side in
// ParentIDs, an ordered set: order is insertion order, duplicates are not
// allowed.
//
// The zero value is not usable - ID must be set before adding to a Store.
type Node struct {
	ID        string   // Unique, stable identifier
	Label     string   // Display label (defaults to ID when empty)
	ParentIDs []string // Ordered set of parent ids
	Data      Metadata // Opaque payload
	Position  *Point   // Last known position, nil if never placed
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// HasParent reports whether id is one of the node's parents.
func (n Node) HasParent(id string) bool { return slices.Contains(n.ParentIDs, id) }

// IsRoot reports whether the node has no parents.
func (n Node) IsRoot() bool { return len(n.ParentIDs) == 0 }

// Clone returns an independent copy of the node. ParentIDs and Position are
// deep-copied; Data is copied one level deep.
func (n Node) Clone() Node {
	out := n
	if n.ParentIDs != nil {
		out.ParentIDs = slices.Clone(n.ParentIDs)
	}
	if n.Data != nil {
		out.Data = maps.Clone(n.Data)
	}
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}

// CloneNodes clones every node in the slice.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// NodeIDs extracts the ID from each node in a slice, preserving order.
func NodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// Snapshot is an immutable deep copy of a node collection, tagged with the
// store clock at capture time.
type Snapshot struct {
	Clock uint64
	Nodes []Node
}

// Len returns the number of nodes in the snapshot.
func (s Snapshot) Len() int { return len(s.Nodes) }

// Node returns the node with the given id from the snapshot.
func (s Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n.Clone(), true
		}
	}
	return Node{}, false
}
