// Package core defines the shared types used across the logfan engine.
//
// It provides the Level type with its nine-step total order, the LevelSet
// that makes the ordering swappable for custom severity schemes, the Op
// comparison operators used by severity filters, and the Record type that
// represents a single log event flowing through the dispatcher.
//
// Records are created once per log call and never mutated afterwards. The
// dispatcher owns a Record only for the duration of one dispatch; the only
// component that retains records beyond that is the deduplication cache,
// which keeps the last record per fingerprint so it can synthesize summary
// records.
package core
