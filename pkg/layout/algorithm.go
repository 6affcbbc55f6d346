package layout

import (
	"context"

	"github.com/matzehuels/dagedit/pkg/dag"
)

// Algorithm computes positions for the movable nodes of a request. It must
// not move pinned nodes; the stabilizer ignores whatever it returns for them.
// Positions missing from the result keep their starting position.
type Algorithm interface {
	Layout(ctx context.Context, req Request) (map[string]dag.Point, error)
}

// AlgorithmFunc adapts a function to the [Algorithm] interface.
type AlgorithmFunc func(ctx context.Context, req Request) (map[string]dag.Point, error)

// Layout calls f.
func (f AlgorithmFunc) Layout(ctx context.Context, req Request) (map[string]dag.Point, error) {
	return f(ctx, req)
}

// Request is the sub-problem handed to an [Algorithm].
type Request struct {
	Nodes    []RequestNode
	Edges    []Edge
	Viewport Viewport
}

// RequestNode is a node with its starting position.
type RequestNode struct {
	ID       string
	Position dag.Point
	Pinned   bool
}

// Edge is a parent → child link between two request nodes.
type Edge struct {
	Parent string
	Child  string
}

// Movable returns the number of unpinned nodes.
func (r Request) Movable() int {
	n := 0
	for _, rn := range r.Nodes {
		if !rn.Pinned {
			n++
		}
	}
	return n
}

// Start returns the starting positions of all request nodes.
func (r Request) Start() map[string]dag.Point {
	out := make(map[string]dag.Point, len(r.Nodes))
	for _, rn := range r.Nodes {
		out[rn.ID] = rn.Position
	}
	return out
}

// Viewport is the visible canvas area.
type Viewport struct {
	Width  float64
	Height float64
}

// DefaultViewport is used when no viewport is configured.
var DefaultViewport = Viewport{Width: 1200, Height: 800}

// Center returns the middle of the viewport.
func (v Viewport) Center() dag.Point { return dag.Point{X: v.Width / 2, Y: v.Height / 2} }

// Hold is an [Algorithm] that leaves every node at its starting position.
// With it the stabilizer only seeds and anchors, which is what hosts without
// a layout engine want.
var Hold Algorithm = AlgorithmFunc(func(_ context.Context, req Request) (map[string]dag.Point, error) {
	return req.Start(), nil
})
