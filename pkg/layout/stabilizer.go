package layout

import (
	"context"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
	"github.com/matzehuels/dagedit/pkg/observability"
)

// DefaultSeed seeds the jitter noise when Options.Seed is zero.
const DefaultSeed = 42

// Options configures a [Stabilizer].
type Options struct {
	Viewport Viewport    // Zero value means DefaultViewport
	Seed     int64       // Noise seed for seeded positions, 0 = DefaultSeed
	Logger   *log.Logger // Nil discards log output
}

// Stabilizer reconciles layout passes with a [PositionCache]. It is not safe
// for concurrent use.
type Stabilizer struct {
	algo   Algorithm
	cache  *PositionCache
	seeder *seeder
	vp     Viewport
	logger *log.Logger
}

// NewStabilizer creates a stabilizer in the Uninitialized state. A nil algo
// uses [Hold].
func NewStabilizer(algo Algorithm, opts Options) *Stabilizer {
	if algo == nil {
		algo = Hold
	}
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = DefaultViewport
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Stabilizer{
		algo:   algo,
		cache:  NewPositionCache(),
		seeder: newSeeder(opts.Seed, opts.Viewport),
		vp:     opts.Viewport,
		logger: opts.Logger,
	}
}

// Cache returns the position cache.
func (s *Stabilizer) Cache() *PositionCache { return s.cache }

// Viewport returns the configured viewport.
func (s *Stabilizer) Viewport() Viewport { return s.vp }

// Initialized reports whether the stabilizer is in the Stable state.
func (s *Stabilizer) Initialized() bool { return s.cache.Initialized() }

// Reset returns to the Uninitialized state; the next pass is a full one.
func (s *Stabilizer) Reset() { s.cache.Reset() }

// Pass is a planned layout pass awaiting [Stabilizer.Settle].
type Pass struct {
	Change  Change
	Full    bool
	Request Request

	order    []string             // all node ids, collection order
	affected map[string]bool      // movable nodes
	start    map[string]dag.Point // starting position of every node
	before   dag.Point            // centroid of affected start positions
	settled  bool
}

// Affected returns the ids the pass may move, in collection order.
func (p *Pass) Affected() []string {
	var out []string
	for _, id := range p.order {
		if p.affected[id] {
			out = append(out, id)
		}
	}
	return out
}

// Start returns the starting position of id.
func (p *Pass) Start(id string) (dag.Point, bool) {
	pt, ok := p.start[id]
	return pt, ok
}

// Outcome is the result of a settled pass.
type Outcome struct {
	Positions map[string]dag.Point // Every node's final position
	Affected  []string             // Nodes the pass was allowed to move
	Moved     []string             // Nodes whose position differs from the start of the pass
	Full      bool
}

// Plan prepares a pass over nodes for change without touching the cache.
func (s *Stabilizer) Plan(nodes []dag.Node, change Change) *Pass {
	g := dag.NewGuard(nodes)
	order, _ := g.TopologicalOrder()
	p := &Pass{
		Change:   change,
		Full:     change.Kind == KindFull || !s.cache.Initialized(),
		order:    dag.NodeIDs(nodes),
		affected: make(map[string]bool, len(nodes)),
		start:    make(map[string]dag.Point, len(nodes)),
	}

	// Restore cached positions; anything unknown becomes affected and starts
	// from its stored position when it has one.
	stored := make(map[string]*dag.Point, len(nodes))
	for _, n := range nodes {
		stored[n.ID] = n.Position
	}
	for _, id := range p.order {
		if pt, ok := s.cache.Get(id); ok {
			p.start[id] = pt
			continue
		}
		p.affected[id] = true
		if stored[id] != nil {
			p.start[id] = *stored[id]
		}
	}

	if p.Full {
		for _, id := range p.order {
			p.affected[id] = true
		}
	} else {
		for _, id := range change.NodeIDs {
			if g.Has(id) {
				p.affected[id] = true
			}
		}
		for id := range g.DescendantSet(slices.Collect(maps.Keys(p.affected))...) {
			p.affected[id] = true
		}
		s.relocate(g, p, change.Relocate)
	}

	s.seed(g, p, order)
	p.before = centroid(p.start, p.Affected())
	p.Request = s.request(g, p)
	return p
}

// relocate moves each listed subtree below its first parent.
func (s *Stabilizer) relocate(g *dag.Guard, p *Pass, ids []string) {
	moved := make(map[string]bool)
	for i, id := range ids {
		if !g.Has(id) || moved[id] {
			continue
		}
		parents := g.Parents(id)
		if len(parents) == 0 {
			continue
		}
		anchor, ok := p.start[parents[0]]
		cur, has := p.start[id]
		if !ok || !has {
			continue
		}
		delta := s.seeder.near(id, &anchor, i%3).Sub(cur)
		for _, m := range append([]string{id}, g.Descendants(id)...) {
			if moved[m] || !p.affected[m] {
				continue
			}
			if pt, ok := p.start[m]; ok {
				p.start[m] = pt.Add(delta)
				moved[m] = true
			}
		}
	}
}

// seed assigns start positions to nodes without one, parents before
// children.
func (s *Stabilizer) seed(g *dag.Guard, p *Pass, order []string) {
	slots := make(map[string]int)
	for _, id := range order {
		if _, ok := p.start[id]; ok {
			continue
		}
		var anchor *dag.Point
		key := ""
		for _, parent := range g.Parents(id) {
			if pt, ok := p.start[parent]; ok {
				anchor, key = &pt, parent
				break
			}
		}
		slot := slots[key]
		slots[key]++
		p.start[id] = s.seeder.near(id, anchor, slot)
	}
}

func (s *Stabilizer) request(g *dag.Guard, p *Pass) Request {
	req := Request{Viewport: s.vp}
	included := make(map[string]bool)
	var pinned []string
	for _, id := range p.order {
		if !p.affected[id] {
			continue
		}
		included[id] = true
		req.Nodes = append(req.Nodes, RequestNode{ID: id, Position: p.start[id]})
		for _, parent := range g.Parents(id) {
			req.Edges = append(req.Edges, Edge{Parent: parent, Child: id})
			if !p.affected[parent] && !included[parent] {
				included[parent] = true
				pinned = append(pinned, parent)
			}
		}
		for _, child := range g.Children(id) {
			if p.affected[child] {
				continue // added from the child's side
			}
			req.Edges = append(req.Edges, Edge{Parent: id, Child: child})
			if !included[child] {
				included[child] = true
				pinned = append(pinned, child)
			}
		}
	}
	for _, id := range pinned {
		req.Nodes = append(req.Nodes, RequestNode{ID: id, Position: p.start[id], Pinned: true})
	}
	return req
}

// Settle reconciles the algorithm's result with the cache and ends the pass.
// result may be nil, in which case every node keeps its start position. This
// is the explicit "layout settled" hook for asynchronous engines.
func (s *Stabilizer) Settle(p *Pass, result map[string]dag.Point) (Outcome, error) {
	if p.settled {
		return Outcome{}, apperr.New(apperr.ErrCodeInternal, "layout pass already settled")
	}
	p.settled = true

	affected := p.Affected()
	final := make(map[string]dag.Point, len(p.order))
	for _, id := range affected {
		if pt, ok := result[id]; ok {
			final[id] = pt
		} else {
			final[id] = p.start[id]
		}
	}

	if !p.Full && len(affected) > 0 {
		delta := p.before.Sub(centroid(final, affected))
		for _, id := range affected {
			final[id] = final[id].Add(delta)
		}
	}

	out := Outcome{Positions: make(map[string]dag.Point, len(p.order)), Affected: affected, Full: p.Full}
	for _, id := range p.order {
		pt, ok := final[id]
		if !ok {
			pt = p.start[id]
		} else {
			s.cache.Set(id, pt)
		}
		out.Positions[id] = pt
		if pt != p.start[id] {
			out.Moved = append(out.Moved, id)
		}
	}
	s.cache.Prune(p.order)
	s.cache.MarkInitialized()
	return out, nil
}

// Apply plans, runs and settles a pass. When the algorithm fails the pass
// is still settled with the seeded start positions, so the cache stays
// complete, and the error is returned alongside the outcome.
func (s *Stabilizer) Apply(ctx context.Context, nodes []dag.Node, change Change) (Outcome, error) {
	p := s.Plan(nodes, change)
	kind := change.Kind.String()
	if p.Full {
		kind = KindFull.String()
	}
	affected := len(p.Affected())

	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, kind, affected)

	var result map[string]dag.Point
	var layoutErr error
	if p.Request.Movable() > 0 {
		result, layoutErr = s.algo.Layout(ctx, p.Request)
		if layoutErr != nil {
			result = nil
			layoutErr = apperr.Wrap(apperr.ErrCodeLayoutFailed, layoutErr, "%s pass over %d nodes", kind, affected)
		}
	}

	out, err := s.Settle(p, result)
	if err != nil {
		return out, err
	}
	elapsed := time.Since(start)
	observability.Layout().OnLayoutComplete(ctx, kind, len(out.Moved), elapsed, layoutErr)
	if layoutErr != nil {
		s.logger.Warn("layout failed, kept seeded positions", "kind", kind, "affected", affected, "err", layoutErr)
	} else {
		s.logger.Debug("layout settled", "kind", kind, "affected", affected, "moved", len(out.Moved), "duration", elapsed)
	}
	return out, layoutErr
}

// centroid returns the mean position of ids in pos, or the origin for an
// empty set.
func centroid(pos map[string]dag.Point, ids []string) dag.Point {
	if len(ids) == 0 {
		return dag.Point{}
	}
	var sum dag.Point
	for _, id := range ids {
		sum = sum.Add(pos[id])
	}
	return sum.Scale(1 / float64(len(ids)))
}
