package dag

import (
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// InvariantOptions relaxes the checks of [CheckInvariants] to match a
// validation policy.
type InvariantOptions struct {
	AllowCycles    bool
	AllowSelfLoops bool
}

// CheckInvariants verifies an arbitrary node list against the store
// invariants and returns the first violation found:
//
//  1. Ids are non-empty and unique
//  2. Parent lists hold no duplicates and no self reference (unless allowed)
//  3. Every parent id names a node of the list
//  4. The parent → child graph is acyclic (unless allowed)
//
// Persistence code runs this before [Store.Restore] on imported data.
// Cycle detection runs in O(N+E) time using depth-first search.
func CheckInvariants(nodes []Node, opts InvariantOptions) error {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return apperr.Wrap(apperr.ErrCodeInvalidGraph, ErrInvalidNodeID, "node list")
		}
		if ids[n.ID] {
			return apperr.Wrap(apperr.ErrCodeInvalidGraph, ErrDuplicateNodeID, "%q", n.ID)
		}
		ids[n.ID] = true
	}

	for _, n := range nodes {
		seen := make(map[string]bool, len(n.ParentIDs))
		for _, p := range n.ParentIDs {
			if seen[p] {
				return apperr.Wrap(apperr.ErrCodeInvalidGraph, ErrDuplicateParent, "%q lists %q twice", n.ID, p)
			}
			seen[p] = true
			if p == n.ID && !opts.AllowSelfLoops {
				return apperr.Wrap(apperr.ErrCodeInvalidGraph, ErrSelfParent, "%q", n.ID)
			}
			if !ids[p] {
				return apperr.Wrap(apperr.ErrCodeInvalidGraph, ErrUnknownParent, "%q references %q", n.ID, p)
			}
		}
	}

	if opts.AllowCycles {
		return nil
	}
	if id, found := findCycle(nodes); found {
		return apperr.Wrap(apperr.ErrCodeInvalidGraph, ErrGraphHasCycle, "cycle through %q", id)
	}
	return nil
}

// findCycle returns a node on a directed cycle, ignoring self-loops (those
// are governed separately by AllowSelfLoops).
func findCycle(nodes []Node) (string, bool) {
	const (
		white = iota
		gray
		black
	)

	children := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		for _, p := range n.ParentIDs {
			if p != n.ID {
				children[p] = append(children[p], n.ID)
			}
		}
	}

	color := make(map[string]int, len(nodes))
	var hit string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, child := range children[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				hit = child
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, n := range nodes {
		if color[n.ID] == white && dfs(n.ID) {
			return hit, true
		}
	}
	return "", false
}
