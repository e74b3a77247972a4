package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/logfan/logfan/core"
)

// DefaultTemplate is the template applied to bindings registered without a
// formatter.
const DefaultTemplate = `[\d] \s \c - \m`

const dateLayout = "2006-01-02 15:04:05"

// ErrBadTemplate indicates a template string that fails to compile.
var ErrBadTemplate = errors.New("invalid format template")

type token uint8

const (
	tokLiteral token = iota
	tokDate
	tokCategory
	tokSeverity
	tokMessage
)

type segment struct {
	tok token
	lit string // tokLiteral only
}

// Template renders records from a template string compiled once at
// construction. See the package documentation for the escape syntax.
type Template struct {
	segments []segment
	levels   *core.LevelSet
}

// NewTemplate compiles tmpl against the default severity set.
func NewTemplate(tmpl string) (*Template, error) {
	return NewTemplateLevels(tmpl, nil)
}

// NewTemplateLevels compiles tmpl, rendering \s with names from levels.
// A nil levels falls back to the default nine-level set.
func NewTemplateLevels(tmpl string, levels *core.LevelSet) (*Template, error) {
	if levels == nil {
		levels = core.DefaultLevels()
	}

	segments, err := compile(tmpl)
	if err != nil {
		return nil, err
	}

	return &Template{segments: segments, levels: levels}, nil
}

// MustTemplate compiles tmpl and panics on error. For statically known
// templates only.
func MustTemplate(tmpl string) *Template {
	t, err := NewTemplate(tmpl)
	if err != nil {
		panic(err)
	}
	return t
}

func compile(tmpl string) ([]segment, error) {
	var (
		segments []segment
		lit      strings.Builder
	)

	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{tok: tokLiteral, lit: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '\\' {
			lit.WriteByte(c)
			continue
		}

		i++
		if i >= len(tmpl) {
			return nil, fmt.Errorf("%w: trailing backslash", ErrBadTemplate)
		}

		switch tmpl[i] {
		case '\\':
			lit.WriteByte('\\')
		case 'd':
			flush()
			segments = append(segments, segment{tok: tokDate})
		case 'c':
			flush()
			segments = append(segments, segment{tok: tokCategory})
		case 's':
			flush()
			segments = append(segments, segment{tok: tokSeverity})
		case 'm':
			flush()
			segments = append(segments, segment{tok: tokMessage})
		default:
			return nil, fmt.Errorf(`%w: unknown escape \%c`, ErrBadTemplate, tmpl[i])
		}
	}
	flush()

	return segments, nil
}

// Format implements Formatter.
func (t *Template) Format(rec *core.Record) string {
	var b strings.Builder
	for _, seg := range t.segments {
		switch seg.tok {
		case tokLiteral:
			b.WriteString(seg.lit)
		case tokDate:
			b.WriteString(rec.Time.UTC().Format(dateLayout))
		case tokCategory:
			b.WriteString(rec.Category)
		case tokSeverity:
			b.WriteString(t.levels.Name(rec.Level))
		case tokMessage:
			b.WriteString(rec.Message)
		}
	}
	return b.String()
}
