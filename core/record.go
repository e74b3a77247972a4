package core

import (
	"hash/fnv"
	"runtime"
	"strings"
	"time"
)

// DefaultPipeline is the pipeline records route to when they name none.
const DefaultPipeline = "default"

// Record represents a single log event. A Record is assembled once at the
// log call site and never mutated afterwards.
type Record struct {
	// Time is the UTC instant the record was created.
	Time time.Time
	// Level is the severity rank within the active LevelSet.
	Level Level
	// Category identifies the origin of the record, defaulting to the
	// calling package when the caller supplies none.
	Category string
	// Message is the log text.
	Message string
	// Pipeline names the target pipeline; empty routes to DefaultPipeline.
	Pipeline string
	// Tags is an optional ordered list of free-form labels.
	Tags []string
}

// NewRecord creates a Record stamped with the current UTC time.
func NewRecord(level Level, category, message string) *Record {
	return &Record{
		Time:     time.Now().UTC(),
		Level:    level,
		Category: category,
		Message:  message,
	}
}

// Fingerprint returns the deduplication key derived from category, severity,
// and message: two records with equal fingerprints are considered "the same"
// for suppression purposes.
func (r *Record) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write([]byte(r.Category))
	h.Write([]byte{0, byte(r.Level), 0})
	h.Write([]byte(r.Message))
	return h.Sum64()
}

// CallerCategory derives a category from the package of the function skip
// frames above the caller. skip=0 names the immediate caller's package.
func CallerCategory(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}

	// Function names look like "github.com/user/mod/pkg.Func" or
	// "pkg.(*Type).Method"; the package is everything before the first
	// dot after the last slash.
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}

	return name
}
