// Package filter implements the predicate engine that decides which
// bindings receive a record.
//
// A Spec is an ordered list of Conditions evaluated as a conjunction:
// a record matches iff every condition matches, checked short-circuit in
// declaration order. The empty Spec matches everything. Each Condition
// targets one record field (category, severity, or message) with one match
// kind: exact string, compiled regular expression, severity comparison, or
// set membership. Pattern conditions use partial (unanchored) matching;
// anchor with ^ and $ for a full match.
//
// Evaluation is pure. Malformed inputs (bad patterns, unknown levels or
// operators) are rejected when a condition is constructed or compiled,
// never during evaluation.
//
// Probe evaluation backs the dispatcher's will-log introspection, which by
// contract never supplies a message. A message condition cannot be decided
// without one, so MatchesProbe treats every message condition as matching.
// This deliberately over-reports: "will this be logged" must never say no
// when the real record could say yes.
package filter
