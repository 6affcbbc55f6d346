// Package dag provides the canonical multi-parent node store for dagedit and
// the read-only graph queries that guard it.
//
// # Overview
//
// Users edit a hierarchy in which a node may have several parents as long as
// no directed cycle results. Structure is stored child-side: every [Node]
// carries the ordered set of its parent ids, and the parent → child edges are
// derived on demand. [Store] is the single source of truth for that structure.
//
// # Basic Usage
//
// Create a store with [New], insert nodes with [Store.Insert] and query the
// structure through a [Guard]:
//
//	s := dag.New()
//	s.Insert(dag.Node{ID: "A"})
//	s.Insert(dag.Node{ID: "B", ParentIDs: []string{"A"}})
//	s.Insert(dag.Node{ID: "C", ParentIDs: []string{"B"}})
//
//	g := s.Guard()
//	g.WouldCreateCycle("C", "A") // true: A already reaches C
//	g.Depth("C")                 // 2
//
// # Invariants
//
// The store maintains three invariants:
//
//   - the parent → child graph has no cycle, unless policy allows cycles
//   - every parent id names a node that is present
//   - node ids are unique
//
// The last two are enforced by the store itself: [Store.Delete] strips the
// removed id from every remaining parent list in the same call, and inserts
// with a known id fail. Acyclicity is policy and is enforced by the
// validation layer before a change reaches the store. [CheckInvariants] verifies all three over
// an arbitrary node list, which import code uses before [Store.Restore].
//
// # Value Semantics
//
// No pointer into the store escapes. Accessors return copies made with
// [Node.Clone], and [Store.Snapshot] produces a structural clone of the whole
// collection. A snapshot costs O(n) in time and memory; callers that keep many
// of them (undo history) should bound how many they keep.
//
// # Guards
//
// [Guard] answers cycle, depth, height, ancestor/descendant and topological
// queries over a fixed node list. Every traversal keeps a visited set, so a
// guard terminates on disconnected inputs and on inputs that already contain a
// cycle. This matters when validating repairs of corrupted imports.
//
// # Concurrency
//
// Store instances are not safe for concurrent use. Hosts must serialize access,
// typically by allowing one mutation in flight at a time. A Guard is immutable
// after construction and may be shared between goroutines.
package dag
