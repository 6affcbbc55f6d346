// Package history keeps bounded, linear undo/redo stacks of graph snapshots.
//
// [History.SaveState] is called with the pre-change snapshot before every
// ordinary mutation; it pushes onto the undo stack and clears the redo stack.
// [History.Undo] and [History.Redo] take the current state, push it onto the
// opposite stack and return the snapshot to restore. Both stacks are capped;
// pushing past the cap evicts the oldest entry.
//
// Each snapshot is a full structural copy, so memory grows with
// Capacity × graph size. Keep Capacity modest for large graphs.
package history

import "github.com/matzehuels/dagedit/pkg/dag"

// DefaultCapacity is the stack bound used when Options.Capacity is zero.
const DefaultCapacity = 50

// Options configures a [History].
type Options struct {
	Capacity int  // Entries per stack, 0 = DefaultCapacity
	Disabled bool // When set, SaveState records nothing
}

// History holds the undo and redo stacks. The zero value is not usable; use
// [New].
type History struct {
	undo     []dag.Snapshot
	redo     []dag.Snapshot
	capacity int
	disabled bool
}

// New creates an empty history.
func New(opts Options) *History {
	c := opts.Capacity
	if c <= 0 {
		c = DefaultCapacity
	}
	return &History{capacity: c, disabled: opts.Disabled}
}

// Capacity returns the per-stack bound.
func (h *History) Capacity() int { return h.capacity }

// Enabled reports whether SaveState records anything.
func (h *History) Enabled() bool { return !h.disabled }

// SaveState records the state before an ordinary mutation and drops the redo
// stack. It is a no-op when history is disabled.
func (h *History) SaveState(before dag.Snapshot) {
	if h.disabled {
		return
	}
	h.undo = h.push(h.undo, before)
	h.redo = nil
}

// Undo returns the most recent undo snapshot and pushes current onto the redo
// stack. It returns false, changing nothing, when there is nothing to undo.
func (h *History) Undo(current dag.Snapshot) (dag.Snapshot, bool) {
	if len(h.undo) == 0 {
		return dag.Snapshot{}, false
	}
	snap := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = h.push(h.redo, current)
	return snap, true
}

// Redo mirrors [History.Undo].
func (h *History) Redo(current dag.Snapshot) (dag.Snapshot, bool) {
	if len(h.redo) == 0 {
		return dag.Snapshot{}, false
	}
	snap := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = h.push(h.undo, current)
	return snap, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Dirty reports whether there is anything to undo. It compares stack
// emptiness only, not content.
func (h *History) Dirty() bool { return h.CanUndo() }

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) { return len(h.undo), len(h.redo) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// push appends s, evicting from the bottom when the stack is full.
func (h *History) push(stack []dag.Snapshot, s dag.Snapshot) []dag.Snapshot {
	if len(stack) >= h.capacity {
		stack = append(stack[:0:0], stack[len(stack)-h.capacity+1:]...)
	}
	return append(stack, s)
}
