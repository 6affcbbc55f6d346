// Package force implements a Fruchterman-Reingold style force-directed
// layout that honours pinned nodes.
//
// Every node repels every other node, edges act as springs, and an extra
// vertical spring pulls each child one level below its parent so the
// result keeps a top-down reading direction. Pinned nodes exert forces but
// never move. Step size is bounded by a temperature that cools every
// iteration.
//
// The simulation is deterministic: nodes are processed in request order
// and coincident nodes are pushed apart along an OpenSimplex-derived
// direction rather than a random one.
package force

import (
	"context"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/layout"
)

// Default simulation parameters.
const (
	DefaultIterations  = 300
	DefaultTemperature = 60.0
	DefaultCooling     = 0.95
	DefaultDistance    = 80.0
	DefaultGravity     = 0.02
	DefaultHierarchy   = 0.2
	DefaultThreshold   = 0.05
)

// Options tunes the simulation. Zero fields take the defaults above.
type Options struct {
	Iterations  int     // Upper bound on simulation steps
	Temperature float64 // Initial maximum displacement per step
	Cooling     float64 // Temperature multiplier per step, in (0, 1)
	Distance    float64 // Ideal edge length (k)
	Gravity     float64 // Pull towards the viewport centre when nothing is pinned, negative disables
	Hierarchy   float64 // Strength of the child-below-parent spring
	Threshold   float64 // Mean displacement below which the layout has converged
	Seed        int64
}

func (o Options) withDefaults() Options {
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.Cooling <= 0 || o.Cooling >= 1 {
		o.Cooling = DefaultCooling
	}
	if o.Distance <= 0 {
		o.Distance = DefaultDistance
	}
	if o.Gravity == 0 {
		o.Gravity = DefaultGravity
	}
	if o.Hierarchy <= 0 {
		o.Hierarchy = DefaultHierarchy
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// Layout is a force-directed [layout.Algorithm].
type Layout struct {
	opts  Options
	noise opensimplex.Noise
}

// New creates a force-directed layout.
func New(opts Options) *Layout {
	opts = opts.withDefaults()
	return &Layout{opts: opts, noise: opensimplex.New(opts.Seed)}
}

// Options returns the effective options.
func (l *Layout) Options() Options { return l.opts }

type body struct {
	pos    dag.Point
	disp   dag.Point
	pinned bool
}

// Layout runs the simulation over req. Only unpinned nodes appear in the
// result. The context is checked between iterations; on cancellation the
// positions reached so far are discarded and the context error is returned.
func (l *Layout) Layout(ctx context.Context, req layout.Request) (map[string]dag.Point, error) {
	bodies := make([]body, len(req.Nodes))
	index := make(map[string]int, len(req.Nodes))
	anyPinned := false
	for i, rn := range req.Nodes {
		bodies[i] = body{pos: rn.Position, pinned: rn.Pinned}
		index[rn.ID] = i
		anyPinned = anyPinned || rn.Pinned
	}

	type spring struct{ parent, child int }
	springs := make([]spring, 0, len(req.Edges))
	for _, e := range req.Edges {
		p, okP := index[e.Parent]
		c, okC := index[e.Child]
		if okP && okC && p != c {
			springs = append(springs, spring{p, c})
		}
	}

	k := l.opts.Distance
	temp := l.opts.Temperature
	center := req.Viewport.Center()
	movable := req.Movable()

	for iter := 0; iter < l.opts.Iterations && movable > 0; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range bodies {
			bodies[i].disp = dag.Point{}
		}

		// Repulsion: k² / d between every pair.
		for i := range bodies {
			for j := i + 1; j < len(bodies); j++ {
				delta := bodies[i].pos.Sub(bodies[j].pos)
				d := length(delta)
				if d < 0.01 {
					d = 0.01
					delta = l.nudge(i, j).Scale(d)
				}
				f := k * k / d
				push := delta.Scale(f / d)
				bodies[i].disp = bodies[i].disp.Add(push)
				bodies[j].disp = bodies[j].disp.Sub(push)
			}
		}

		// Attraction along edges: d² / k, plus the hierarchy spring.
		for _, s := range springs {
			p, c := &bodies[s.parent], &bodies[s.child]
			delta := c.pos.Sub(p.pos)
			d := math.Max(length(delta), 0.01)
			pull := delta.Scale(d / k)
			p.disp = p.disp.Add(pull)
			c.disp = c.disp.Sub(pull)

			dy := (p.pos.Y + layout.LevelGap) - c.pos.Y
			c.disp.Y += dy * l.opts.Hierarchy * k / layout.LevelGap
			p.disp.Y -= dy * l.opts.Hierarchy * k / layout.LevelGap
		}

		if !anyPinned && l.opts.Gravity > 0 {
			for i := range bodies {
				bodies[i].disp = bodies[i].disp.Add(center.Sub(bodies[i].pos).Scale(l.opts.Gravity))
			}
		}

		// Move, limited by temperature.
		total := 0.0
		for i := range bodies {
			b := &bodies[i]
			if b.pinned {
				continue
			}
			d := length(b.disp)
			if d == 0 {
				continue
			}
			step := math.Min(d, temp)
			b.pos = b.pos.Add(b.disp.Scale(step / d))
			total += step
		}

		temp *= l.opts.Cooling
		if total/float64(movable) < l.opts.Threshold {
			break
		}
	}

	out := make(map[string]dag.Point, movable)
	for i, rn := range req.Nodes {
		if !rn.Pinned {
			out[rn.ID] = bodies[i].pos
		}
	}
	return out, nil
}

// nudge returns a unit vector separating two coincident bodies.
func (l *Layout) nudge(i, j int) dag.Point {
	angle := l.noise.Eval2(float64(i)*0.618, float64(j)*0.382) * math.Pi
	return dag.Point{X: math.Cos(angle), Y: math.Sin(angle)}
}

func length(p dag.Point) float64 { return math.Hypot(p.X, p.Y) }
