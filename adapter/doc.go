// Package adapter provides the built-in sink adapters consumed by the
// dispatch core through the Adapter capability interface.
//
//   - Writer wraps any io.Writer, one newline-terminated line per record.
//     Stdout and Stderr are its ready-made console variants.
//   - File appends to a log file with size-based rotation, optional gzip
//     compression of rotated backups, and bounded backup retention.
//   - Forward ships records to a remote TCP collector as msgpack arrays,
//     reconnecting with exponential backoff.
//
// Adapters here are deliberately synchronous: queuing, ordering, and
// failure isolation belong to the dispatch core, which can wrap any of
// them in an async binding.
package adapter
