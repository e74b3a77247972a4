package filter

import "github.com/logfan/logfan/core"

// Spec is an ordered conjunction of Conditions. The empty Spec matches
// every record.
type Spec []Condition

// Matches reports whether rec satisfies every condition, evaluated
// short-circuit in declaration order.
func (s Spec) Matches(rec *core.Record) bool {
	for _, c := range s {
		if !c.matches(rec) {
			return false
		}
	}
	return true
}

// MatchesProbe evaluates the spec for will-log introspection, where no
// message is available. Message conditions are treated as conservatively
// matching; everything else is evaluated normally, still short-circuiting
// in declaration order.
func (s Spec) MatchesProbe(rec *core.Record) bool {
	for _, c := range s {
		if c.Field == FieldMessage {
			continue
		}
		if !c.matches(rec) {
			return false
		}
	}
	return true
}

// HasMessageCondition reports whether any condition targets the message
// field, i.e. whether MatchesProbe may over-report relative to Matches.
func (s Spec) HasMessageCondition() bool {
	for _, c := range s {
		if c.Field == FieldMessage {
			return true
		}
	}
	return false
}

// Predicate is the custom-filter capability: an externally supplied object
// that replaces an entire Spec on a binding. Test must be pure.
type Predicate interface {
	Test(rec *core.Record) bool
}

// PredicateFunc adapts a plain function to the Predicate interface.
type PredicateFunc func(rec *core.Record) bool

// Test implements Predicate.
func (f PredicateFunc) Test(rec *core.Record) bool {
	return f(rec)
}
