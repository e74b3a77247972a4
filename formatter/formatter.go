package formatter

import "github.com/logfan/logfan/core"

// Formatter turns a record into its display string. Implementations must be
// pure: no side effects, no retained references to the record.
type Formatter interface {
	Format(rec *core.Record) string
}

// FormatterFunc adapts a plain function to the Formatter interface.
type FormatterFunc func(rec *core.Record) string

// Format implements Formatter.
func (f FormatterFunc) Format(rec *core.Record) string {
	return f(rec)
}
