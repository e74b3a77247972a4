// Package dispatch implements the routing core of logfan: named pipelines
// of bindings, the dispatcher that fans records out to them, per-binding
// async delivery workers, and the deduplication proxy.
//
// A Dispatcher is an explicit object with defined construction and
// shutdown; there is no process-wide instance. Registration (Add) is rare
// and administrative: it validates the binding, then publishes a new
// immutable registry snapshot. Dispatch and WillLog read the current
// snapshot through an atomic pointer, so steady-state logging never blocks
// on registration or on other log calls.
//
// Delivery per binding is synchronous by default. Async bindings own one
// bounded queue and one consumer goroutine; enqueueing never blocks the
// caller — when the queue is full the oldest pending task is dropped and
// the binding's drop counter increments. Ordering is guaranteed per
// binding, not across bindings.
//
// Adapter failures are isolated: they are counted, reported through a
// fallback channel (a minimal stderr adapter by default, retried once and
// then dropped to avoid recursion), and never interrupt delivery to the
// remaining bindings or propagate to the log call.
package dispatch
