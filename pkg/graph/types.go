package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// =============================================================================
// Graph - Document Format
// =============================================================================

// Graph is the serialized form of a node collection.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges,omitempty"` // Node-link input only; never written
}

// Node is the serialized form of a [dag.Node].
type Node struct {
	ID       string         `json:"id"`
	Label    string         `json:"label,omitempty"` // Display label (defaults to ID)
	Parents  []string       `json:"parents,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Position *dag.Point     `json:"position,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a parent → child link in node-link documents.
type Edge struct {
	From string `json:"from"` // Parent
	To   string `json:"to"`   // Child
}

// =============================================================================
// dag.Node ↔ Graph Conversion
// =============================================================================

// FromNodes converts nodes to a document, preserving their order.
func FromNodes(nodes []dag.Node) Graph {
	out := Graph{Nodes: make([]Node, len(nodes))}
	for i, n := range nodes {
		out.Nodes[i] = Node{
			ID:      n.ID,
			Label:   n.Label,
			Parents: slices.Clone(n.ParentIDs),
			Data:    maps.Clone(map[string]any(n.Data)),
		}
		if n.Position != nil {
			p := *n.Position
			out.Nodes[i].Position = &p
		}
	}
	return out
}

// ToNodes converts a document to nodes and verifies them with
// [dag.CheckInvariants]. Edges are appended to the child's parent list
// unless already present there.
func ToNodes(g Graph, opts dag.InvariantOptions) ([]dag.Node, error) {
	nodes := make([]dag.Node, len(g.Nodes))
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = dag.Node{
			ID:        n.ID,
			Label:     n.Label,
			ParentIDs: slices.Clone(n.Parents),
			Data:      dag.Metadata(maps.Clone(n.Data)),
		}
		if n.Position != nil {
			p := *n.Position
			nodes[i].Position = &p
		}
		if _, dup := index[n.ID]; !dup {
			index[n.ID] = i
		}
	}

	for _, e := range g.Edges {
		i, ok := index[e.To]
		if !ok {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidGraph, dag.ErrUnknownNode, "edge %q -> %q", e.From, e.To)
		}
		if !nodes[i].HasParent(e.From) {
			nodes[i].ParentIDs = append(nodes[i].ParentIDs, e.From)
		}
	}

	if err := dag.CheckInvariants(nodes, opts); err != nil {
		return nil, err
	}
	return nodes, nil
}
