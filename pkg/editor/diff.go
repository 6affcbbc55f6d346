package editor

import (
	"reflect"
	"slices"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/mutate"
)

// delta is the difference between two node collections.
type delta struct {
	removed  []string       // in before only
	touched  []string       // added, or parent list changed
	relocate []string       // present in both, first parent changed to another node
	moved    []string       // present in both, stored position changed to a set one
	events   []mutate.Event // as if the change had been made by hand
}

// diff compares before and after. Events follow the mutation engine's
// conventions: added links before removed ones, and a node's severed links
// before its removal.
func diff(before, after []dag.Node) delta {
	old := make(map[string]dag.Node, len(before))
	for _, n := range before {
		old[n.ID] = n
	}
	present := make(map[string]bool, len(after))

	var d delta
	var unlinked []mutate.Event
	for _, n := range after {
		present[n.ID] = true
		prev, existed := old[n.ID]
		if !existed {
			d.touched = append(d.touched, n.ID)
			d.events = append(d.events, mutate.Event{Kind: mutate.NodeAdded, NodeID: n.ID})
			for _, p := range n.ParentIDs {
				d.events = append(d.events, mutate.Event{Kind: mutate.LinkAdded, NodeID: n.ID, ParentID: p})
			}
			continue
		}

		if !slices.Equal(prev.ParentIDs, n.ParentIDs) {
			d.touched = append(d.touched, n.ID)
			if len(n.ParentIDs) > 0 && first(prev.ParentIDs) != n.ParentIDs[0] {
				d.relocate = append(d.relocate, n.ID)
			}
			for _, p := range n.ParentIDs {
				if !prev.HasParent(p) {
					d.events = append(d.events, mutate.Event{Kind: mutate.LinkAdded, NodeID: n.ID, ParentID: p})
				}
			}
			for _, p := range prev.ParentIDs {
				if !n.HasParent(p) {
					unlinked = append(unlinked, mutate.Event{Kind: mutate.LinkRemoved, NodeID: n.ID, ParentID: p})
				}
			}
		}
		moved := !reflect.DeepEqual(prev.Position, n.Position)
		if moved && n.Position != nil {
			d.moved = append(d.moved, n.ID)
		}
		if moved || prev.Label != n.Label || !reflect.DeepEqual(prev.Data, n.Data) {
			d.events = append(d.events, mutate.Event{Kind: mutate.NodeUpdated, NodeID: n.ID})
		}
	}
	d.events = append(d.events, unlinked...)

	for _, n := range before {
		if !present[n.ID] {
			d.removed = append(d.removed, n.ID)
			d.events = append(d.events, mutate.Event{Kind: mutate.NodeRemoved, NodeID: n.ID})
		}
	}
	return d
}
