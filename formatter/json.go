package formatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/logfan/logfan/core"
)

// JSON renders records as single-line JSON objects with time, level,
// category, message, and (when present) tags fields.
type JSON struct {
	levels *core.LevelSet
}

// NewJSON creates a JSON formatter using the default severity set.
func NewJSON() *JSON {
	return NewJSONLevels(nil)
}

// NewJSONLevels creates a JSON formatter naming severities from levels.
// A nil levels falls back to the default nine-level set.
func NewJSONLevels(levels *core.LevelSet) *JSON {
	if levels == nil {
		levels = core.DefaultLevels()
	}
	return &JSON{levels: levels}
}

// Format implements Formatter. The object is built by hand the way the
// record layout is fixed; only string values need escaping.
func (f *JSON) Format(rec *core.Record) string {
	var b strings.Builder
	b.Grow(96 + len(rec.Category) + len(rec.Message))

	b.WriteString(`{"time":"`)
	b.WriteString(rec.Time.UTC().Format(time.RFC3339Nano))
	b.WriteString(`","level":`)
	b.WriteString(strconv.Quote(f.levels.Name(rec.Level)))
	b.WriteString(`,"category":`)
	b.WriteString(strconv.Quote(rec.Category))
	b.WriteString(`,"message":`)
	b.WriteString(strconv.Quote(rec.Message))

	if len(rec.Tags) > 0 {
		b.WriteString(`,"tags":[`)
		for i, tag := range rec.Tags {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(tag))
		}
		b.WriteByte(']')
	}

	b.WriteByte('}')
	return b.String()
}
