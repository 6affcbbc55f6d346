// Package collapse tracks user-collapsed nodes and derives the set of nodes
// they hide.
//
// A collapsed node hides its full descendant closure. The hidden set is
// always the union of the descendant sets of all collapsed nodes and is
// recomputed from scratch after every change; it is never edited
// incrementally. A node therefore stays hidden after one collapsed ancestor
// expands as long as another collapsed ancestor still covers it.
//
// [State] does not observe the store. Its owner calls [State.Refresh] after
// any structural mutation, undo or redo, and [State.OnNodeDeleted] when a
// node is removed.
package collapse

import (
	"slices"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// State holds the collapsed ids, the descendants each one hides, and their
// union. The zero value is not usable; use [New].
type State struct {
	covers map[string]map[string]bool // collapsed id -> hidden descendants
	order  []string                   // collapsed ids in collapse order
	hidden map[string]bool
}

// New creates a state with nothing collapsed.
func New() *State {
	return &State{
		covers: make(map[string]map[string]bool),
		hidden: make(map[string]bool),
	}
}

// Collapse hides every descendant of id. It fails if id is unknown, already
// collapsed, or has no children.
func (s *State) Collapse(g *dag.Guard, id string) error {
	if !g.Has(id) {
		return apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", id)
	}
	if _, ok := s.covers[id]; ok {
		return apperr.New(apperr.ErrCodeAlreadyCollapsed, "%q is already collapsed", id)
	}
	if len(g.Children(id)) == 0 {
		return apperr.New(apperr.ErrCodeCannotCollapseLeaf, "%q has no children", id)
	}
	s.covers[id] = descendants(g, id)
	s.order = append(s.order, id)
	s.recompute()
	return nil
}

// Expand undoes [State.Collapse] for id.
func (s *State) Expand(id string) error {
	if _, ok := s.covers[id]; !ok {
		return apperr.New(apperr.ErrCodeNotCollapsed, "%q is not collapsed", id)
	}
	s.drop(id)
	s.recompute()
	return nil
}

// OnNodeDeleted drops any collapse entry for id. The caller still has to
// [State.Refresh] with the new structure so descendant sets lose the node.
func (s *State) OnNodeDeleted(id string) {
	if _, ok := s.covers[id]; ok {
		s.drop(id)
	}
	for _, set := range s.covers {
		delete(set, id)
	}
	s.recompute()
}

// Reveal expands every collapsed ancestor of id so that id becomes visible.
// It returns the ids it expanded, nearest ancestor first.
func (s *State) Reveal(g *dag.Guard, id string) ([]string, error) {
	if !g.Has(id) {
		return nil, apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", id)
	}
	var expanded []string
	for _, a := range g.Ancestors(id) {
		if _, ok := s.covers[a]; ok {
			s.drop(a)
			expanded = append(expanded, a)
		}
	}
	// Descendant sets may be stale if the caller skipped a Refresh; any
	// remaining cover that still lists id is stale by definition.
	for _, c := range slices.Clone(s.order) {
		if s.covers[c][id] {
			s.drop(c)
			expanded = append(expanded, c)
		}
	}
	s.recompute()
	return expanded, nil
}

// Refresh re-derives every descendant set from g. Collapsed ids that no
// longer exist are dropped and returned. A collapsed node left without
// children stays collapsed with nothing to hide, so an undo that gives the
// children back hides them again.
func (s *State) Refresh(g *dag.Guard) []string {
	var dropped []string
	for _, id := range slices.Clone(s.order) {
		if !g.Has(id) {
			s.drop(id)
			dropped = append(dropped, id)
			continue
		}
		s.covers[id] = descendants(g, id)
	}
	s.recompute()
	return dropped
}

// Hidden returns the hidden ids in sorted order.
func (s *State) Hidden() []string {
	out := make([]string, 0, len(s.hidden))
	for id := range s.hidden {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// HiddenSet returns a copy of the hidden set.
func (s *State) HiddenSet() map[string]bool {
	out := make(map[string]bool, len(s.hidden))
	for id := range s.hidden {
		out[id] = true
	}
	return out
}

// IsHidden reports whether id is hidden by some collapsed ancestor.
func (s *State) IsHidden(id string) bool { return s.hidden[id] }

// IsCollapsed reports whether id is collapsed.
func (s *State) IsCollapsed(id string) bool {
	_, ok := s.covers[id]
	return ok
}

// Collapsed returns the collapsed ids in collapse order.
func (s *State) Collapsed() []string { return slices.Clone(s.order) }

// Restore replaces the collapsed set with ids, keeping those that exist in g
// and have children. It is used when loading a saved session.
func (s *State) Restore(g *dag.Guard, ids []string) {
	s.Reset()
	for _, id := range ids {
		_ = s.Collapse(g, id)
	}
}

// Reset expands everything.
func (s *State) Reset() {
	clear(s.covers)
	clear(s.hidden)
	s.order = nil
}

func (s *State) drop(id string) {
	delete(s.covers, id)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == id })
}

func (s *State) recompute() {
	clear(s.hidden)
	for _, set := range s.covers {
		for id := range set {
			s.hidden[id] = true
		}
	}
}

func descendants(g *dag.Guard, id string) map[string]bool {
	out := make(map[string]bool)
	for _, d := range g.Descendants(id) {
		out[d] = true
	}
	return out
}
