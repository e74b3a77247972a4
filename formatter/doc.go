// Package formatter defines how records are rendered into display strings.
//
// It exposes the Formatter capability interface consumed by the dispatch
// core, plus two built-in implementations: Template, driven by a template
// string with backslash escape tokens, and JSON, which renders the record
// as a single JSON object. FormatterFunc adapts plain functions.
//
// Template syntax uses four escape tokens:
//
//	\d  date, "2006-01-02 15:04:05" in UTC
//	\c  category
//	\s  severity name
//	\m  message
//
// A literal backslash is written as \\. Any other escape, or a trailing
// lone backslash, is rejected when the template compiles, so malformed
// templates fail at registration time rather than per record.
//
// Format is a pure function of the record. Formatter output carries no
// trailing newline; line-oriented adapters append their own.
package formatter
