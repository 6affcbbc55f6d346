package neato

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/layout"
)

// Options configures the neato run.
type Options struct {
	NodeWidth    float64 // Node box width in points, 0 = 80
	NodeHeight   float64 // Node box height in points, 0 = 36
	Overlap      string  // Graphviz overlap mode, "" = "prism"
	Hierarchical bool    // Use neato's hierarchical stress mode
}

// Layout is a [layout.Algorithm] backed by neato.
type Layout struct {
	opts Options
}

// New creates a neato-backed layout.
func New(opts Options) *Layout {
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = 80
	}
	if opts.NodeHeight <= 0 {
		opts.NodeHeight = 36
	}
	if opts.Overlap == "" {
		opts.Overlap = "prism"
	}
	return &Layout{opts: opts}
}

// Layout runs neato over req and returns positions of the unpinned nodes.
func (l *Layout) Layout(ctx context.Context, req layout.Request) (map[string]dag.Point, error) {
	if req.Movable() == 0 {
		return map[string]dag.Point{}, nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(ToDOT(req, l.opts)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	got, err := ParsePositions(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return Align(req, got)
}

// Align maps raw neato positions back onto the request's frame and keeps
// only the unpinned nodes. It fails if a requested node is missing from
// the output.
func Align(req layout.Request, got map[string]dag.Point) (map[string]dag.Point, error) {
	var shift dag.Point
	pinned := 0
	for _, rn := range req.Nodes {
		p, ok := got[rn.ID]
		if !ok {
			return nil, fmt.Errorf("graphviz output lacks node %q", rn.ID)
		}
		if rn.Pinned {
			shift = shift.Add(rn.Position.Sub(p))
			pinned++
		}
	}

	if pinned > 0 {
		shift = shift.Scale(1 / float64(pinned))
	} else {
		var sum dag.Point
		for _, rn := range req.Nodes {
			sum = sum.Add(got[rn.ID])
		}
		shift = req.Viewport.Center().Sub(sum.Scale(1 / float64(len(req.Nodes))))
	}

	out := make(map[string]dag.Point, len(req.Nodes)-pinned)
	for _, rn := range req.Nodes {
		if !rn.Pinned {
			out[rn.ID] = got[rn.ID].Add(shift)
		}
	}
	return out, nil
}
