package validate

import (
	"context"
	"fmt"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// Validator checks proposed changes against a [Policy]. It keeps no state
// besides the policy and is safe for concurrent use as long as SetPolicy is
// not called concurrently with a check.
type Validator struct {
	policy Policy
}

// New creates a validator for policy.
func New(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Policy returns the active policy.
func (v *Validator) Policy() Policy { return v.policy }

// SetPolicy replaces the active policy.
func (v *Validator) SetPolicy(p Policy) { v.policy = p }

// ValidateAddEdge checks adding the edge source → target, making source an
// additional parent of target.
func (v *Validator) ValidateAddEdge(ctx context.Context, nodes []dag.Node, source, target string) error {
	g := dag.NewGuard(nodes)
	src, tgt, err := lookup(nodes, source, target)
	if err != nil {
		return err
	}
	if g.HasEdge(source, target) {
		return apperr.New(apperr.ErrCodeDuplicateEdge, "%q is already a parent of %q", source, target)
	}
	if err := v.checkEdge(g, source, target); err != nil {
		return err
	}
	if err := v.checkFanIn(target, len(g.Parents(target))+1); err != nil {
		return err
	}
	if err := v.checkDepth(g, source, target); err != nil {
		return err
	}
	return v.evaluate(ctx, src, tgt, nodes)
}

// ValidateReparent checks replacing all parents of child with newParent.
func (v *Validator) ValidateReparent(ctx context.Context, nodes []dag.Node, child, newParent string) error {
	parent, node, err := lookup(nodes, newParent, child)
	if err != nil {
		return err
	}
	g := dag.NewGuard(detached(nodes, child))
	if err := v.checkEdge(g, newParent, child); err != nil {
		return err
	}
	if err := v.checkFanIn(child, 1); err != nil {
		return err
	}
	if err := v.checkDepth(g, newParent, child); err != nil {
		return err
	}
	return v.evaluate(ctx, parent, node, nodes)
}

// ValidateSetParents checks replacing the parent list of child with parents.
// Max-parents applies to the final parent count. The predicate runs once per
// parent that child does not already have.
func (v *Validator) ValidateSetParents(ctx context.Context, nodes []dag.Node, child string, parents []string) error {
	node, ok := find(nodes, child)
	if !ok {
		return apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", child)
	}
	byID := index(nodes)
	seen := make(map[string]bool, len(parents))
	for _, p := range parents {
		if _, ok := byID[p]; !ok {
			return apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", p)
		}
		if seen[p] {
			return apperr.New(apperr.ErrCodeDuplicateEdge, "%q listed twice as parent of %q", p, child)
		}
		seen[p] = true
	}

	g := dag.NewGuard(detached(nodes, child))
	for _, p := range parents {
		if err := v.checkEdge(g, p, child); err != nil {
			return err
		}
	}
	if err := v.checkFanIn(child, len(parents)); err != nil {
		return err
	}
	for _, p := range parents {
		if err := v.checkDepth(g, p, child); err != nil {
			return err
		}
	}
	for _, p := range parents {
		if node.HasParent(p) {
			continue
		}
		if err := v.evaluate(ctx, nodes[byID[p]], node, nodes); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkEdge(g *dag.Guard, source, target string) error {
	if source == target {
		if v.policy.AllowSelfLoops {
			return nil
		}
		return apperr.New(apperr.ErrCodeSelfLoopRejected, "%q cannot be its own parent", source)
	}
	if !v.policy.AllowCycles && g.WouldCreateCycle(source, target) {
		return apperr.New(apperr.ErrCodeCycleRejected, "%q -> %q would create a cycle", source, target)
	}
	return nil
}

func (v *Validator) checkFanIn(target string, count int) error {
	if v.policy.MaxParents > 0 && count > v.policy.MaxParents {
		return apperr.New(apperr.ErrCodeMaxParentsExceeded,
			"%q would have %d parents, limit is %d", target, count, v.policy.MaxParents)
	}
	return nil
}

func (v *Validator) checkDepth(g *dag.Guard, source, target string) error {
	if v.policy.MaxDepth <= 0 || source == target {
		return nil
	}
	longest := g.Depth(source) + 1 + g.Height(target)
	if longest > v.policy.MaxDepth {
		return apperr.New(apperr.ErrCodeMaxDepthExceeded,
			"%q -> %q creates a path of length %d, limit is %d", source, target, longest, v.policy.MaxDepth)
	}
	return nil
}

// evaluate runs the custom predicate under the policy timeout. Panics,
// errors, timeouts and false results all reject.
func (v *Validator) evaluate(ctx context.Context, source, target dag.Node, nodes []dag.Node) error {
	pred := v.policy.Predicate
	if pred == nil {
		return nil
	}
	if v.policy.PredicateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.policy.PredicateTimeout)
		defer cancel()
	}

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	view := dag.CloneNodes(nodes)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("predicate panic: %v", r)}
			}
		}()
		ok, err := pred.Evaluate(ctx, source.Clone(), target.Clone(), view)
		done <- result{ok: ok, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	switch {
	case res.err != nil:
		return apperr.Wrap(apperr.ErrCodeCustomValidation, res.err, "%q -> %q", source.ID, target.ID)
	case !res.ok:
		return apperr.New(apperr.ErrCodeCustomValidation, "%q -> %q rejected by custom rule", source.ID, target.ID)
	}
	return nil
}

func lookup(nodes []dag.Node, source, target string) (dag.Node, dag.Node, error) {
	src, ok := find(nodes, source)
	if !ok {
		return dag.Node{}, dag.Node{}, apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", source)
	}
	tgt, ok := find(nodes, target)
	if !ok {
		return dag.Node{}, dag.Node{}, apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", target)
	}
	return src, tgt, nil
}

func find(nodes []dag.Node, id string) (dag.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return dag.Node{}, false
}

func index(nodes []dag.Node) map[string]int {
	m := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := m[n.ID]; !dup {
			m[n.ID] = i
		}
	}
	return m
}

// detached returns a shallow view of nodes in which child has no parents.
// Replacing a parent list removes the old incoming edges, so depth and
// cycle checks must not count them.
func detached(nodes []dag.Node, child string) []dag.Node {
	out := make([]dag.Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if out[i].ID == child {
			out[i].ParentIDs = nil
		}
	}
	return out
}
