// Package layout keeps node positions visually stable while the graph is
// edited.
//
// # Overview
//
// Computing positions is delegated to a pluggable [Algorithm]; this package
// decides which nodes may move and reconciles the result. The [Stabilizer]
// is a two-state machine:
//
//   - Uninitialized: no cached positions. The first request, whatever its
//     kind, lays out the whole graph and fills the [PositionCache].
//   - Stable: the cache holds a position for every node. Requests of kind
//     Add, Remove or Reparent lay out only the affected part of the graph.
//
// # Incremental Passes
//
// For an incremental [Change] the stabilizer
//
//  1. restores every node to its cached position,
//  2. expands the directly affected ids with all their descendants,
//  3. seeds nodes without a cached position: below their first parent when
//     they have one, around the viewport centre otherwise,
//  4. pins every node outside the affected set,
//  5. runs the algorithm over the affected nodes, the edges touching them and
//     the pinned endpoints of those edges,
//  6. translates the affected nodes by centroid(before) − centroid(after) so
//     the subset stays where it was instead of drifting to the algorithm's
//     own origin, and
//  7. re-caches the positions.
//
// Nodes outside the affected set keep their cached position exactly.
//
// # Explicit Settling
//
// [Stabilizer.Apply] runs the whole pass synchronously. Hosts whose layout
// engine reports completion asynchronously call [Stabilizer.Plan], hand
// [Pass.Request] to the engine, and call [Stabilizer.Settle] once it has
// finished. Settle is the only point where the cache is written.
//
// # Seeding
//
// Seeded positions get a small deterministic offset from OpenSimplex noise
// keyed by the node id, so siblings added in one batch do not start on top of
// each other and repeated runs produce identical layouts.
package layout
