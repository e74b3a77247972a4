package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownLevel indicates an unrecognized severity level name.
	ErrUnknownLevel = errors.New("unknown severity level")
	// ErrUnknownOp indicates an unrecognized comparison operator.
	ErrUnknownOp = errors.New("unknown comparison operator")
	// ErrEmptyLevelSet indicates a LevelSet was built without any level names.
	ErrEmptyLevelSet = errors.New("level set requires at least one level")
)

// Level is the rank of a severity within a LevelSet. Ranks start at 1 and
// increase with severity; the zero value is not a valid level.
type Level int8

// The nine levels of the default severity set.
const (
	TraceLevel Level = iota + 1
	DebugLevel
	InfoLevel
	NoticeLevel
	WarningLevel
	ErrorLevel
	CriticalLevel
	AlertLevel
	EmergencyLevel
)

var defaultLevelNames = []string{
	"trace", "debug", "info", "notice", "warning",
	"error", "critical", "alert", "emergency",
}

// String returns the level's name within the default severity set.
func (l Level) String() string {
	if l < 1 || int(l) > len(defaultLevelNames) {
		return "unknown"
	}
	return defaultLevelNames[l-1]
}

// Op is a comparison operator applied to severity ranks.
type Op uint8

const (
	OpLt Op = iota + 1
	OpLe
	OpEq
	OpNe
	OpGe
	OpGt
)

// ParseOp converts an operator literal (one of < <= == != >= >) to an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case "==", "=":
		return OpEq, nil
	case "!=":
		return OpNe, nil
	case ">=":
		return OpGe, nil
	case ">":
		return OpGt, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// String returns the operator literal.
func (op Op) String() string {
	switch op {
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGe:
		return ">="
	case OpGt:
		return ">"
	default:
		return "?"
	}
}

// Compare reports whether "a op b" holds under integer rank comparison.
func Compare(a Level, op Op, b Level) bool {
	switch op {
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpGe:
		return a >= b
	case OpGt:
		return a > b
	default:
		return false
	}
}

// LevelSet is an ordered set of severity names. Rank is defined by position,
// starting at 1, so the set as a whole is the single configuration object
// that fixes the total order used everywhere else in the engine.
//
// The default nine-level set is returned by DefaultLevels. Custom orderings
// are built with NewLevelSet and passed to the dispatcher and filter
// compiler in its place.
type LevelSet struct {
	names []string
	ranks map[string]Level
}

// NewLevelSet builds a LevelSet from names ordered least to most severe.
// Names are matched case-insensitively by Parse.
func NewLevelSet(names ...string) (*LevelSet, error) {
	if len(names) == 0 {
		return nil, ErrEmptyLevelSet
	}

	s := &LevelSet{
		names: make([]string, len(names)),
		ranks: make(map[string]Level, len(names)),
	}
	for i, name := range names {
		name = strings.ToLower(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name at rank %d", ErrUnknownLevel, i+1)
		}
		if _, dup := s.ranks[name]; dup {
			return nil, fmt.Errorf("duplicate level name %q", name)
		}
		s.names[i] = name
		s.ranks[name] = Level(i + 1)
	}

	return s, nil
}

// DefaultLevels returns the nine-level set trace(1) through emergency(9).
func DefaultLevels() *LevelSet {
	s, err := NewLevelSet(defaultLevelNames...)
	if err != nil {
		panic(err) // static input
	}
	return s
}

// Parse resolves a level name (case-insensitive) to its rank.
func (s *LevelSet) Parse(name string) (Level, error) {
	l, ok := s.ranks[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
	return l, nil
}

// Name returns the name at the given rank, or "unknown" when out of range.
func (s *LevelSet) Name(l Level) string {
	if l < 1 || int(l) > len(s.names) {
		return "unknown"
	}
	return s.names[l-1]
}

// Names returns the level names in rank order.
func (s *LevelSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of levels in the set.
func (s *LevelSet) Len() int {
	return len(s.names)
}

// Max returns the highest rank in the set.
func (s *LevelSet) Max() Level {
	return Level(len(s.names))
}
