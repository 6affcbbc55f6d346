// Package editor ties the editing engines into one interactive document.
//
// Every structural operation follows the same path:
//
//	validate → snapshot → mutate → refresh collapse state → stabilize layout
//
// Validation runs against the current node collection and rejects the
// request with a coded error before anything changes. On acceptance the
// mutation engine captures a snapshot into the undo history, applies the
// change and notifies subscribers. The collapse state is then re-derived
// from the new structure and the layout stabilizer lays out only the part
// of the canvas the change affected.
//
// # Results
//
// Structural operations return an [Update] describing what changed and the
// layout outcome. A layout failure is reported in Update.LayoutErr and
// through the layout hooks; it never rolls back an accepted edit, and the
// affected nodes keep their seeded positions.
//
// # Undo and Redo
//
// [Editor.Undo] and [Editor.Redo] restore full snapshots. The editor diffs
// the restored collection against the current one, emits matching events
// and lays out only the nodes whose parent lists changed, so stepping
// through history does not reshuffle the canvas. Positions of deleted nodes
// are remembered and reused when an undo brings them back.
//
// # Manual Layout
//
// Hosts whose layout engine runs outside the call (a browser worker, an
// animation loop) set Options.ManualLayout. Updates then carry a planned
// [layout.Pass] instead of an outcome, and the host reports the engine's
// result through [Editor.Settle].
//
// # Concurrency
//
// An Editor is not safe for concurrent use. Hosts with several goroutines
// must serialize access, one operation in flight at a time.
package editor
