package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/logfan/logfan/core"
)

// SlogHandler adapts a Dispatcher to slog.Handler, letting logfan serve as
// a backend for the standard library. Records route to one pipeline;
// attributes become "key=value" tags on the record.
type SlogHandler struct {
	d        *Dispatcher
	pipeline string
	tags     []string
	group    string
}

// NewSlogHandler creates a slog.Handler dispatching into pipeline (empty
// for "default").
func NewSlogHandler(d *Dispatcher, pipeline string) *SlogHandler {
	return &SlogHandler{d: d, pipeline: pipeline}
}

// Enabled consults WillLog, so slog skips argument evaluation whenever no
// binding would receive the record.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.d.WillLog(h.pipeline, h.level(level), "")
}

// Handle converts the slog record and dispatches it.
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}
	rec := &core.Record{
		Time:     when.UTC(),
		Level:    h.level(record.Level),
		Message:  record.Message,
		Pipeline: h.pipeline,
	}

	tags := h.tags
	record.Attrs(func(a slog.Attr) bool {
		tags = append(tags[:len(tags):len(tags)], h.tagFor(a))
		return true
	})
	rec.Tags = tags

	_, err := h.d.Dispatch(rec)
	return err
}

// WithAttrs returns a handler whose records carry the extra attributes as
// tags.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	tags := make([]string, len(h.tags), len(h.tags)+len(attrs))
	copy(tags, h.tags)
	for _, a := range attrs {
		tags = append(tags, h.tagFor(a))
	}
	return &SlogHandler{d: h.d, pipeline: h.pipeline, tags: tags, group: h.group}
}

// WithGroup returns a handler that prefixes subsequent attribute keys with
// the group name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	tags := make([]string, len(h.tags))
	copy(tags, h.tags)
	return &SlogHandler{d: h.d, pipeline: h.pipeline, tags: tags, group: group}
}

func (h *SlogHandler) tagFor(a slog.Attr) string {
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	return key + "=" + a.Value.Resolve().String()
}

// level maps slog's four levels into the dispatcher's severity set: the
// conventional name when the set defines it, otherwise the default rank
// clamped into the set's range so custom sets never see an invalid rank.
func (h *SlogHandler) level(level slog.Level) core.Level {
	levels := h.d.Levels()

	name, fallback := "debug", core.DebugLevel
	switch {
	case level >= slog.LevelError:
		name, fallback = "error", core.ErrorLevel
	case level >= slog.LevelWarn:
		name, fallback = "warning", core.WarningLevel
	case level >= slog.LevelInfo:
		name, fallback = "info", core.InfoLevel
	}

	if l, err := levels.Parse(name); err == nil {
		return l
	}
	if max := levels.Max(); fallback > max {
		return max
	}
	return fallback
}
