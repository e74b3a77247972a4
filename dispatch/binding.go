package dispatch

import (
	"sync/atomic"
	"time"

	"github.com/logfan/logfan/core"
	"github.com/logfan/logfan/filter"
	"github.com/logfan/logfan/formatter"
)

// BindingConfig describes one binding: an adapter plus its routing
// configuration within a pipeline. The zero value is valid: synchronous
// delivery to the "default" pipeline with no filter, the default template,
// and no deduplication.
type BindingConfig struct {
	// Pipeline names the pipeline to append to, created if absent.
	// Empty means "default".
	Pipeline string
	// Filter restricts which records the binding receives. Empty matches
	// everything. Mutually exclusive with Predicate.
	Filter filter.Spec
	// Predicate replaces the Filter with a caller-supplied test.
	Predicate filter.Predicate
	// Formatter renders matched records; nil uses the default template.
	Formatter formatter.Formatter
	// Async moves delivery onto a dedicated worker with a bounded queue.
	Async bool
	// QueueSize bounds the async queue (default 1000; Async only).
	QueueSize int
	// Dedup enables the duplicate-suppression proxy for this binding.
	Dedup *DedupConfig
}

// DedupConfig configures the per-binding deduplication proxy.
type DedupConfig struct {
	// Window is how long repeats of a fingerprint are suppressed and
	// counted after a delivery. Must be positive.
	Window time.Duration
	// SweepInterval is how often pending repeat counts are checked for
	// expiry when no matching traffic arrives (default Window/4, at
	// least 10ms).
	SweepInterval time.Duration
	// Key overrides the fingerprint with a caller-supplied key.
	Key func(rec *core.Record) string
}

// binding is a registered adapter plus its evaluated configuration.
// Bindings are immutable after registration; all mutable state lives in
// the handle's counters, the worker, and the dedup cache.
type binding struct {
	adapter   Adapter
	spec      filter.Spec
	pred      filter.Predicate
	formatter formatter.Formatter
	worker    *worker
	dedup     *dedupState
	handle    *BindingHandle
	fallback  *reporter
}

// dispatch routes one record through this binding, updating out. The
// filter gates the dedup proxy: records the binding would never deliver
// must not arm suppression windows, count as repeats, or surface as
// summaries.
func (b *binding) dispatch(rec *core.Record, out *Outcome) {
	if !b.matches(rec) {
		return
	}

	if b.dedup != nil {
		v := b.dedup.observe(rec, time.Now())
		if v.summary != nil {
			b.applyDeliver(v.summary, out)
		}
		if !v.deliver {
			b.handle.suppressed.Add(1)
			out.Suppressed++
			return
		}
	}

	out.Matched++
	b.applyDeliver(rec, out)
}

func (b *binding) matches(rec *core.Record) bool {
	if b.pred != nil {
		return b.pred.Test(rec)
	}
	return b.spec.Matches(rec)
}

func (b *binding) applyDeliver(rec *core.Record, out *Outcome) {
	if b.deliver(rec) {
		out.Delivered++
	} else {
		out.Failed++
	}
}

// deliver formats rec and hands it to the adapter, directly or through the
// binding's worker. Reports whether the record was accepted for delivery;
// async enqueue always accepts.
func (b *binding) deliver(rec *core.Record) bool {
	msg := b.formatter.Format(rec)

	if b.worker != nil {
		b.worker.enqueue(task{msg: msg, rec: rec})
		b.handle.delivered.Add(1)
		return true
	}

	if err := b.adapter.Handle(msg, rec); err != nil {
		b.handle.failed.Add(1)
		b.fallback.failure(err, rec)
		return false
	}
	b.handle.delivered.Add(1)
	return true
}

// probe is the side-effect-free variant of dispatch used by WillLog: no
// formatting, no adapter, no dedup consultation. Custom predicates cannot
// be probed without a message, so they are conservatively matching, the
// same policy filter specs apply to message conditions.
func (b *binding) probe(rec *core.Record) bool {
	if b.pred != nil {
		return true
	}
	return b.spec.MatchesProbe(rec)
}

// BindingHandle identifies a registered binding and exposes its delivery
// counters. All counters are monotonic and safe to read concurrently.
type BindingHandle struct {
	pipeline string

	delivered  atomic.Uint64
	suppressed atomic.Uint64
	failed     atomic.Uint64
	drops      atomic.Uint64
}

// Pipeline returns the name of the pipeline the binding belongs to.
func (h *BindingHandle) Pipeline() string { return h.pipeline }

// Delivered returns how many records were accepted for delivery (for async
// bindings: enqueued).
func (h *BindingHandle) Delivered() uint64 { return h.delivered.Load() }

// Suppressed returns how many records the dedup proxy suppressed.
func (h *BindingHandle) Suppressed() uint64 { return h.suppressed.Load() }

// Failed returns how many deliveries the adapter failed.
func (h *BindingHandle) Failed() uint64 { return h.failed.Load() }

// Drops returns how many queued tasks were dropped by the async queue's
// drop-oldest policy or abandoned at shutdown.
func (h *BindingHandle) Drops() uint64 { return h.drops.Load() }
