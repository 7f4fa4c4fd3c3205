// Package constrain attaches asynchronous, possibly interdependent
// constraints to mutable values and exposes a continuously consistent view of
// their validity, in-flight validation status and diagnostics.
//
// A guarded value is wrapped in one of the property types (Value, List, Set,
// Map). Each property owns one serialized run coordinator per constraint:
// every validation request advances a per-constraint generation, and only the
// result belonging to the current generation is ever applied, so stale
// asynchronous results can never overwrite newer state regardless of
// completion order. Per-constraint outcomes are aggregated into three
// signals (valid, invalid, validating), a slot-ordered diagnostic list, and
// a deferred snapshot holding the last value that passed every constraint.
//
// Collection properties additionally validate each element independently
// through a ConstrainedElement, and advance their snapshot by replaying an
// aggregated structural diff instead of copying the whole collection.
//
// State transitions are serialized per property: asynchronous completions
// are applied under the property's internal lock (optionally marshaled
// through a constraint's completion executor), and change notifications fire
// outside the lock, consolidated to at most one notification per flag per
// triggering mutation.
package constrain
