package validate

import (
	"context"
	"time"

	"github.com/matzehuels/dagedit/pkg/dag"
)

// Policy configures which structures a [Validator] accepts. Zero limits mean
// unlimited; the zero Policy forbids cycles and self-loops and nothing else.
type Policy struct {
	AllowCycles    bool
	AllowSelfLoops bool
	MaxDepth       int // Longest root-to-leaf path length, 0 = unlimited
	MaxParents     int // Parents per node, 0 = unlimited

	// Predicate is consulted after every structural check passed. Nil
	// accepts everything.
	Predicate Predicate

	// PredicateTimeout bounds a single predicate call, 0 = no bound beyond
	// the caller's context.
	PredicateTimeout time.Duration
}

// DefaultPolicy returns the policy used when nothing is configured: no
// cycles, no self-loops, no limits.
func DefaultPolicy() Policy { return Policy{} }

// InvariantOptions returns the structural checks of [dag.CheckInvariants]
// matching this policy.
func (p Policy) InvariantOptions() dag.InvariantOptions {
	return dag.InvariantOptions{AllowCycles: p.AllowCycles, AllowSelfLoops: p.AllowSelfLoops}
}

// Predicate is a host-supplied rule over a proposed edge source → target.
// nodes is the full collection before the change. Implementations may block.
type Predicate interface {
	Evaluate(ctx context.Context, source, target dag.Node, nodes []dag.Node) (bool, error)
}

// PredicateFunc adapts a function to the [Predicate] interface.
type PredicateFunc func(ctx context.Context, source, target dag.Node, nodes []dag.Node) (bool, error)

// Evaluate calls f.
func (f PredicateFunc) Evaluate(ctx context.Context, source, target dag.Node, nodes []dag.Node) (bool, error) {
	return f(ctx, source, target, nodes)
}
