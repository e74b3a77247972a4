package dispatch

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/logfan/logfan/core"
	"github.com/logfan/logfan/formatter"
)

const (
	defaultQueueSize  = 1000
	defaultDrainGrace = 5 * time.Second
)

// Config configures a Dispatcher. The zero value is usable: default
// nine-level severity set, stderr fallback, lenient unhandled records, 5s
// drain grace.
type Config struct {
	// Levels is the severity set records and filters are ranked against.
	Levels *core.LevelSet
	// Fallback receives engine-internal failure reports. Defaults to a
	// minimal stderr adapter.
	Fallback Adapter
	// StrictUnhandled makes Dispatch return ErrUnhandled when a record
	// matches no binding in its resolved pipeline.
	StrictUnhandled bool
	// DrainGrace bounds how long Close waits for async queues to drain.
	DrainGrace time.Duration
}

// Outcome summarizes one dispatch: how many bindings matched the record,
// how many deliveries were accepted, how many records the dedup proxy
// suppressed, and how many adapter calls failed.
type Outcome struct {
	Matched    int
	Delivered  int
	Suppressed int
	Failed     int
}

// registry is the immutable routing snapshot read by Dispatch and WillLog.
// Registration replaces the whole snapshot; readers never lock.
type registry struct {
	pipelines map[string][]*binding
}

// resolve returns the bindings for name, falling back to the default
// pipeline for unknown or empty names. Never nil-errors: an unknown
// pipeline is routed through "default" by contract.
func (r *registry) resolve(name string) []*binding {
	if name == "" {
		name = core.DefaultPipeline
	}
	if bs, ok := r.pipelines[name]; ok {
		return bs
	}
	return r.pipelines[core.DefaultPipeline]
}

// Dispatcher routes records through named pipelines to their bindings.
// Construct with New, register bindings with Add, and Close when done.
// All methods are safe for concurrent use.
type Dispatcher struct {
	levels     *core.LevelSet
	fallback   *reporter
	strict     bool
	drainGrace time.Duration
	defaultFmt formatter.Formatter

	state atomic.Pointer[registry]

	mu      sync.Mutex // serializes Add and Close
	closers []io.Closer
	closed  bool
}

// New creates a Dispatcher with an empty "default" pipeline.
func New(cfg Config) *Dispatcher {
	levels := cfg.Levels
	if levels == nil {
		levels = core.DefaultLevels()
	}
	if cfg.DrainGrace <= 0 {
		cfg.DrainGrace = defaultDrainGrace
	}

	tpl, err := formatter.NewTemplateLevels(formatter.DefaultTemplate, levels)
	if err != nil {
		panic(err) // static template
	}

	d := &Dispatcher{
		levels:     levels,
		fallback:   newReporter(cfg.Fallback),
		strict:     cfg.StrictUnhandled,
		drainGrace: cfg.DrainGrace,
		defaultFmt: tpl,
	}
	d.state.Store(&registry{
		pipelines: map[string][]*binding{core.DefaultPipeline: nil},
	})
	return d
}

// Levels returns the severity set the dispatcher ranks against.
func (d *Dispatcher) Levels() *core.LevelSet { return d.levels }

// Add appends a binding to the named pipeline, creating the pipeline if it
// does not exist. Configuration failures reject synchronously and leave
// the registry unchanged.
func (d *Dispatcher) Add(a Adapter, cfg BindingConfig) (*BindingHandle, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil adapter", ErrConfiguration)
	}
	if cfg.Predicate != nil && len(cfg.Filter) > 0 {
		return nil, fmt.Errorf("%w: predicate replaces the filter spec, set one of the two", ErrConfiguration)
	}
	if cfg.QueueSize < 0 {
		return nil, fmt.Errorf("%w: negative queue size", ErrConfiguration)
	}
	if cfg.Dedup != nil && cfg.Dedup.Window <= 0 {
		return nil, fmt.Errorf("%w: dedup window must be positive", ErrConfiguration)
	}

	pipeline := cfg.Pipeline
	if pipeline == "" {
		pipeline = core.DefaultPipeline
	}

	fmtr := cfg.Formatter
	if fmtr == nil {
		fmtr = d.defaultFmt
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}

	handle := &BindingHandle{pipeline: pipeline}
	b := &binding{
		adapter:   a,
		spec:      cfg.Filter,
		pred:      cfg.Predicate,
		formatter: fmtr,
		handle:    handle,
		fallback:  d.fallback,
	}
	if cfg.Async {
		size := cfg.QueueSize
		if size == 0 {
			size = defaultQueueSize
		}
		b.worker = newWorker(a, handle, d.fallback, size, d.drainGrace)
	}
	if cfg.Dedup != nil {
		b.dedup = newDedupState(*cfg.Dedup, b)
	}

	if c, ok := a.(io.Closer); ok {
		d.adoptCloser(c)
	}

	// Publish a new snapshot: copy the pipeline map and extend the one
	// binding slice. In-flight dispatches keep the old snapshot.
	old := d.state.Load()
	pipelines := make(map[string][]*binding, len(old.pipelines)+1)
	for name, bs := range old.pipelines {
		pipelines[name] = bs
	}
	existing := pipelines[pipeline]
	next := make([]*binding, len(existing), len(existing)+1)
	copy(next, existing)
	pipelines[pipeline] = append(next, b)

	d.state.Store(&registry{pipelines: pipelines})

	return handle, nil
}

func (d *Dispatcher) adoptCloser(c io.Closer) {
	for _, have := range d.closers {
		if have == c {
			return
		}
	}
	d.closers = append(d.closers, c)
}

// Dispatch routes one record: it resolves the record's pipeline (unknown
// names fall back to "default"), consults each binding in registration
// order, and returns a delivery summary. Adapter failures never propagate;
// in strict mode only, a record handled by no binding yields ErrUnhandled.
func (d *Dispatcher) Dispatch(rec *core.Record) (Outcome, error) {
	var out Outcome

	reg := d.state.Load()
	for _, b := range reg.resolve(rec.Pipeline) {
		b.dispatch(rec, &out)
	}

	if d.strict && out.Matched == 0 && out.Suppressed == 0 {
		return out, fmt.Errorf("%w: level %s, category %q", ErrUnhandled,
			d.levels.Name(rec.Level), rec.Category)
	}
	return out, nil
}

// WillLog reports whether a record at the given severity and category
// would reach at least one binding of the pipeline (default for unknown
// names). It performs no formatting and invokes no adapter; filter specs
// with message conditions, and custom predicates, are treated as
// conservatively matching since no message exists to test.
func (d *Dispatcher) WillLog(pipeline string, level core.Level, category string) bool {
	probe := &core.Record{
		Level:    level,
		Category: category,
		Pipeline: pipeline,
	}

	reg := d.state.Load()
	for _, b := range reg.resolve(pipeline) {
		if b.probe(probe) {
			return true
		}
	}
	return false
}

// Close shuts the dispatcher down: it unpublishes all bindings, flushes
// pending dedup summaries, drains async queues within the configured
// grace (abandoning the remainder with a warning), and closes adapters
// that implement io.Closer, each exactly once. Idempotent.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true

	reg := d.state.Load()
	d.state.Store(&registry{
		pipelines: map[string][]*binding{core.DefaultPipeline: nil},
	})

	closers := d.closers
	d.closers = nil
	d.mu.Unlock()

	// Sweepers first so pending summaries still reach the workers, then
	// the workers themselves.
	for _, bs := range reg.pipelines {
		for _, b := range bs {
			if b.dedup != nil {
				b.dedup.stop()
			}
		}
	}
	for _, bs := range reg.pipelines {
		for _, b := range bs {
			if b.worker != nil {
				b.worker.stop()
			}
		}
	}

	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
