// Package targeting implements the conditional targeting engine: the two-level
// rule model that decides whether a layout applies to a request.
//
// # Rule model
//
//	ConditionSet = Group OR Group OR ...      (empty set matches everything)
//	Group        = Atom AND Atom AND ...      (empty group matches)
//	Atom         = {root, end, comparator}    (comparator is "===" or "!==")
//
// The root names a category of the Category Vocabulary Registry. The registry
// supplies an accessor that reads the actual values of that category from the
// request context. A single end value matches when it is among the actual
// values; a list end matches when any of its values is.
//
// # Failure semantics
//
// The engine never returns errors. Everything that cannot be evaluated is a
// non-match:
//
//   - unrecognized roots, empty ends and unknown comparators never match,
//     whatever the comparator;
//   - categories whose accessor reports the context as not evaluable never match;
//   - condition sets that were not a valid group/atom structure when decoded
//     never match.
//
// For recognized, well-formed atoms "!==" is the exact negation of "===".
//
// # Matched categories
//
// Match reports the (root, end) pairs of the first matching group, in list
// order. Only "===" atoms contribute pairs; they drive magic tag substitution.
//
// # Thread Safety
//
// A Matcher holds no per-request state and is safe for concurrent use.
package targeting
