package filter

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/logfan/logfan/core"
)

// ErrBadCondition indicates a declarative condition that cannot be compiled.
var ErrBadCondition = errors.New("invalid filter condition")

// ConditionDecl is the declarative form of a Condition, as it appears in
// configuration files. Exactly one of Value, Pattern, Values, or Op must be
// set; the match kind is inferred from which one is.
type ConditionDecl struct {
	// Field is "category", "severity", or "message".
	Field string `yaml:"field"`
	// Value requests an exact match (severity: the level name).
	Value string `yaml:"value,omitempty"`
	// Pattern requests a regular-expression match.
	Pattern string `yaml:"pattern,omitempty"`
	// Values requests set membership (severity: level names).
	Values []string `yaml:"values,omitempty"`
	// Op plus Level request a severity comparison (severity field only).
	Op    string `yaml:"op,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// Compile turns declarative conditions into an evaluatable Spec, resolving
// level names against levels. Any malformed declaration rejects the whole
// spec; nothing is partially compiled.
func Compile(decls []ConditionDecl, levels *core.LevelSet) (Spec, error) {
	if levels == nil {
		levels = core.DefaultLevels()
	}

	spec := make(Spec, 0, len(decls))
	for i, d := range decls {
		c, err := compileOne(d, levels)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		spec = append(spec, c)
	}

	return spec, nil
}

func compileOne(d ConditionDecl, levels *core.LevelSet) (Condition, error) {
	switch d.Field {
	case "category", "message":
		return compileString(d)
	case "severity":
		return compileSeverity(d, levels)
	default:
		return Condition{}, fmt.Errorf("%w: unknown field %q", ErrBadCondition, d.Field)
	}
}

func compileString(d ConditionDecl) (Condition, error) {
	field := FieldCategory
	if d.Field == "message" {
		field = FieldMessage
	}

	if d.Op != "" || d.Level != "" {
		return Condition{}, fmt.Errorf("%w: %s conditions do not take an operator", ErrBadCondition, d.Field)
	}

	switch {
	case d.Pattern != "":
		if d.Value != "" || len(d.Values) > 0 {
			return Condition{}, fmt.Errorf("%w: pattern excludes value/values", ErrBadCondition)
		}
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return Condition{}, fmt.Errorf("%w: %w", ErrBadPattern, err)
		}
		return Condition{Field: field, Kind: KindPattern, Pattern: re}, nil

	case len(d.Values) > 0:
		if d.Value != "" {
			return Condition{}, fmt.Errorf("%w: values excludes value", ErrBadCondition)
		}
		return Condition{Field: field, Kind: KindOneOf, Set: stringSet(d.Values)}, nil

	case d.Value != "":
		return Condition{Field: field, Kind: KindExact, Value: d.Value}, nil

	default:
		return Condition{}, fmt.Errorf("%w: %s condition needs value, values, or pattern", ErrBadCondition, d.Field)
	}
}

func compileSeverity(d ConditionDecl, levels *core.LevelSet) (Condition, error) {
	if d.Pattern != "" {
		return Condition{}, fmt.Errorf("%w: severity conditions do not take a pattern", ErrBadCondition)
	}

	switch {
	case d.Op != "":
		op, err := core.ParseOp(d.Op)
		if err != nil {
			return Condition{}, fmt.Errorf("%w: %w", ErrBadCondition, err)
		}
		name := d.Level
		if name == "" {
			name = d.Value
		}
		level, err := levels.Parse(name)
		if err != nil {
			return Condition{}, fmt.Errorf("%w: %w", ErrBadCondition, err)
		}
		return Severity(op, level), nil

	case len(d.Values) > 0:
		set := make([]core.Level, 0, len(d.Values))
		for _, name := range d.Values {
			level, err := levels.Parse(name)
			if err != nil {
				return Condition{}, fmt.Errorf("%w: %w", ErrBadCondition, err)
			}
			set = append(set, level)
		}
		return SeverityOneOf(set...), nil

	case d.Value != "":
		level, err := levels.Parse(d.Value)
		if err != nil {
			return Condition{}, fmt.Errorf("%w: %w", ErrBadCondition, err)
		}
		return Severity(core.OpEq, level), nil

	default:
		return Condition{}, fmt.Errorf("%w: severity condition needs op+level, value, or values", ErrBadCondition)
	}
}
