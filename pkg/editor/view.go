package editor

import (
	"context"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/layout"
)

// Collapse hides every descendant of id.
func (e *Editor) Collapse(ctx context.Context, id string) error {
	if err := e.collapsed.Collapse(e.store.Guard(), id); err != nil {
		return e.refuse(ctx, "collapse", id, err)
	}
	e.logger.Debug("collapsed", "node", id, "hidden", len(e.collapsed.Hidden()))
	return nil
}

// Expand shows the descendants of id again, unless another collapsed
// ancestor still hides them.
func (e *Editor) Expand(ctx context.Context, id string) error {
	if err := e.collapsed.Expand(id); err != nil {
		return e.refuse(ctx, "expand", id, err)
	}
	e.logger.Debug("expanded", "node", id, "hidden", len(e.collapsed.Hidden()))
	return nil
}

// Reveal expands every collapsed ancestor of id and returns their ids.
func (e *Editor) Reveal(ctx context.Context, id string) ([]string, error) {
	expanded, err := e.collapsed.Reveal(e.store.Guard(), id)
	if err != nil {
		return nil, e.refuse(ctx, "reveal", id, err)
	}
	return expanded, nil
}

// RestoreCollapsed replaces the collapsed set, skipping ids that no longer
// exist or have no children.
func (e *Editor) RestoreCollapsed(ids []string) {
	e.collapsed.Restore(e.store.Guard(), ids)
}

// Hidden returns the hidden ids in sorted order.
func (e *Editor) Hidden() []string { return e.collapsed.Hidden() }

// IsHidden reports whether id is hidden by a collapsed ancestor.
func (e *Editor) IsHidden(id string) bool { return e.collapsed.IsHidden(id) }

// Collapsed returns the collapsed ids in collapse order.
func (e *Editor) Collapsed() []string { return e.collapsed.Collapsed() }

// IsCollapsed reports whether id is collapsed.
func (e *Editor) IsCollapsed(id string) bool { return e.collapsed.IsCollapsed(id) }

// Positions returns a copy of every cached position.
func (e *Editor) Positions() map[string]dag.Point { return e.stabilizer.Cache().Positions() }

// Position returns the cached position of id.
func (e *Editor) Position(id string) (dag.Point, bool) { return e.stabilizer.Cache().Get(id) }

// PositionCache exposes the stabilizer's cache for persistence.
func (e *Editor) PositionCache() *layout.PositionCache { return e.stabilizer.Cache() }

// Viewport returns the layout viewport.
func (e *Editor) Viewport() layout.Viewport { return e.stabilizer.Viewport() }

// Relayout lays out the whole document again.
func (e *Editor) Relayout(ctx context.Context) (Update, error) {
	u := Update{Op: "relayout", Change: layout.Full()}
	e.runLayout(ctx, &u)
	return u, u.LayoutErr
}

// ResetLayout forgets every cached position and lays out from scratch.
func (e *Editor) ResetLayout(ctx context.Context) (Update, error) {
	e.stabilizer.Reset()
	clear(e.tomb)
	return e.Relayout(ctx)
}

// Settle completes a pass planned in manual mode with the engine's result.
func (e *Editor) Settle(p *layout.Pass, result map[string]dag.Point) (layout.Outcome, error) {
	return e.stabilizer.Settle(p, result)
}
