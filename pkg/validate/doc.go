// Package validate decides whether a proposed structural change may be
// applied to a node collection.
//
// A [Validator] holds a [Policy] and checks add-edge, reparent and
// set-parents proposals against it. Checks run in a fixed order and stop at
// the first failure:
//
//  1. Referenced nodes exist (NODE_NOT_FOUND)
//  2. The edge is not already present, add-edge only (DUPLICATE_EDGE)
//  3. Self-loops against policy (SELF_LOOP_REJECTED)
//  4. Cycles against policy (CYCLE_REJECTED)
//  5. The child's resulting parent count against MaxParents (MAX_PARENTS_EXCEEDED)
//  6. depth(parent) + 1 + height(child) against MaxDepth (MAX_DEPTH_EXCEEDED)
//  7. The custom [Predicate] (CUSTOM_VALIDATION_REJECTED)
//
// The depth check bounds the longest path the new edge can take part in, not
// only the distance between its endpoints.
//
// Validation never mutates its input and carries no side effects on success.
// Every rejection is a recoverable *errors.Error carrying one of the codes
// above; see [github.com/matzehuels/dagedit/pkg/errors.IsRecoverable].
//
// # Edge Direction
//
// Edges run parent → child. In ValidateAddEdge the source becomes a parent of
// the target.
//
// # Custom Predicates
//
// A [Predicate] may block, for example to consult a remote rule service. The
// validator runs it under the caller's context, bounded by
// Policy.PredicateTimeout when set. A predicate that returns false, returns an
// error, panics or runs out of time rejects the change; none of these
// propagate as a fault.
package validate
