package dispatch

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/logfan/logfan/core"
)

// Adapter is the sink capability consumed by the dispatcher. Handle
// receives the formatted display string alongside the record it was
// rendered from; it may fail, and the dispatcher isolates that failure.
//
// Adapters are shared, not owned: the same Adapter may back any number of
// bindings, possibly across dispatchers. An Adapter that also implements
// io.Closer is closed exactly once when its Dispatcher closes.
type Adapter interface {
	Handle(formatted string, rec *core.Record) error
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(formatted string, rec *core.Record) error

// Handle implements Adapter.
func (f AdapterFunc) Handle(formatted string, rec *core.Record) error {
	return f(formatted, rec)
}

// reporter is the internal fallback channel for dispatch failures: adapter
// errors, drain drops, and other engine-internal conditions that must not
// propagate to the log caller. A fallback write that fails is retried once
// and then dropped, so a broken fallback can never recurse or block.
type reporter struct {
	adapter Adapter
}

func newReporter(a Adapter) *reporter {
	if a == nil {
		a = &stderrAdapter{w: os.Stderr}
	}
	return &reporter{adapter: a}
}

func (r *reporter) failure(cause error, rec *core.Record) {
	category := "logfan"
	if rec != nil && rec.Category != "" {
		category = rec.Category
	}
	r.emit(fmt.Sprintf("adapter failure (category %q): %v", category, cause))
}

func (r *reporter) warn(msg string) {
	r.emit(msg)
}

func (r *reporter) emit(msg string) {
	rec := &core.Record{
		Time:     time.Now().UTC(),
		Level:    core.ErrorLevel,
		Category: "logfan",
		Message:  msg,
	}
	if err := r.adapter.Handle(msg, rec); err != nil {
		_ = r.adapter.Handle(msg, rec) // one retry, then give up silently
	}
}

// stderrAdapter is the default fallback sink: one line per report, no
// formatting dependencies, safe under concurrency.
type stderrAdapter struct {
	mu sync.Mutex
	w  io.Writer
}

func (a *stderrAdapter) Handle(formatted string, _ *core.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := io.WriteString(a.w, "logfan: "+formatted+"\n")
	return err
}
