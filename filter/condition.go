package filter

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/logfan/logfan/core"
)

// ErrBadPattern indicates a condition pattern failed to compile.
var ErrBadPattern = errors.New("invalid filter pattern")

// Field selects which record field a Condition inspects.
type Field uint8

const (
	FieldCategory Field = iota + 1
	FieldSeverity
	FieldMessage
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldCategory:
		return "category"
	case FieldSeverity:
		return "severity"
	case FieldMessage:
		return "message"
	default:
		return "?"
	}
}

// Kind discriminates the match variants of a Condition.
type Kind uint8

const (
	// KindExact matches the field by string equality.
	KindExact Kind = iota + 1
	// KindPattern matches the field against a compiled regular expression.
	KindPattern
	// KindRange compares the severity rank with an operator.
	KindRange
	// KindOneOf matches when the field value is a member of a set.
	KindOneOf
)

// Condition is one clause of a Spec: a target field plus exactly one match
// variant, discriminated by Kind. Only the variant's own fields are set.
type Condition struct {
	Field Field
	Kind  Kind

	// KindExact
	Value string
	// KindPattern
	Pattern *regexp.Regexp
	// KindRange (severity only)
	Op    core.Op
	Level core.Level
	// KindOneOf: string members for category/message, levels for severity.
	Set    map[string]struct{}
	Levels map[core.Level]struct{}
}

// Category matches records whose category equals value.
func Category(value string) Condition {
	return Condition{Field: FieldCategory, Kind: KindExact, Value: value}
}

// CategoryPattern matches records whose category contains a match of expr.
func CategoryPattern(expr string) (Condition, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %w", ErrBadPattern, err)
	}
	return Condition{Field: FieldCategory, Kind: KindPattern, Pattern: re}, nil
}

// CategoryOneOf matches records whose category is one of values.
func CategoryOneOf(values ...string) Condition {
	return Condition{Field: FieldCategory, Kind: KindOneOf, Set: stringSet(values)}
}

// Message matches records whose message equals value.
func Message(value string) Condition {
	return Condition{Field: FieldMessage, Kind: KindExact, Value: value}
}

// MessagePattern matches records whose message contains a match of expr.
func MessagePattern(expr string) (Condition, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %w", ErrBadPattern, err)
	}
	return Condition{Field: FieldMessage, Kind: KindPattern, Pattern: re}, nil
}

// MessageOneOf matches records whose message is one of values.
func MessageOneOf(values ...string) Condition {
	return Condition{Field: FieldMessage, Kind: KindOneOf, Set: stringSet(values)}
}

// Severity matches records whose rank satisfies "record.Level op level".
func Severity(op core.Op, level core.Level) Condition {
	return Condition{Field: FieldSeverity, Kind: KindRange, Op: op, Level: level}
}

// SeverityOneOf matches records whose level is one of levels.
func SeverityOneOf(levels ...core.Level) Condition {
	set := make(map[core.Level]struct{}, len(levels))
	for _, l := range levels {
		set[l] = struct{}{}
	}
	return Condition{Field: FieldSeverity, Kind: KindOneOf, Levels: set}
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches evaluates the condition against rec. Severity conditions read the
// rank; string conditions read the targeted field value.
func (c Condition) matches(rec *core.Record) bool {
	if c.Field == FieldSeverity {
		switch c.Kind {
		case KindRange:
			return core.Compare(rec.Level, c.Op, c.Level)
		case KindOneOf:
			_, ok := c.Levels[rec.Level]
			return ok
		default:
			return false
		}
	}

	var value string
	switch c.Field {
	case FieldCategory:
		value = rec.Category
	case FieldMessage:
		value = rec.Message
	default:
		return false
	}

	switch c.Kind {
	case KindExact:
		return value == c.Value
	case KindPattern:
		return c.Pattern.MatchString(value)
	case KindOneOf:
		_, ok := c.Set[value]
		return ok
	default:
		return false
	}
}
