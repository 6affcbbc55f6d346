// Package mutate applies accepted structural changes to a [dag.Store].
//
// The [Engine] is the only writer of the store in an editing session. It does
// not consult validation policy: callers obtain acceptance from
// [github.com/matzehuels/dagedit/pkg/validate] first and then call the
// matching engine method. The engine only refuses changes that would corrupt
// the store itself, such as an unknown node or a duplicate id, and it does so
// before anything is recorded.
//
// # Snapshots
//
// Every mutating call invokes the [SnapshotHook] with the pre-change state
// immediately before touching the store. The history engine plugs in here. A
// call that fails its preconditions never reaches the hook, so a refused
// change leaves no history entry behind.
//
// # Events
//
// Observers registered with [Engine.Subscribe] receive one [Event] per
// elementary change, synchronously and in order. [Engine.SetParents] emits all
// LinkAdded events before any LinkRemoved event, so an observer never sees a
// child without parents unless it really ends up with none. [Engine.RemoveNode]
// emits one LinkRemoved per severed child link followed by NodeRemoved.
package mutate
