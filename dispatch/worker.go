package dispatch

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/logfan/logfan/core"
)

// task is one unit of async delivery: the record plus its already-formatted
// display string. Formatting happens on the caller side so a slow adapter
// never delays it and the worker does no work besides Handle.
type task struct {
	msg string
	rec *core.Record
}

// worker is the single consumer of one async binding's bounded queue. It
// preserves enqueue order per binding and isolates adapter failures by
// reporting them to the fallback channel and moving on.
type worker struct {
	adapter  Adapter
	handle   *BindingHandle
	fallback *reporter

	tasks     chan task
	quit      chan struct{}
	done      chan struct{}
	grace     time.Duration
	abandoned atomic.Bool
}

func newWorker(a Adapter, h *BindingHandle, fb *reporter, queueSize int, grace time.Duration) *worker {
	w := &worker{
		adapter:  a,
		handle:   h,
		fallback: fb,
		tasks:    make(chan task, queueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		grace:    grace,
	}
	go w.run()
	return w
}

// enqueue never blocks. On a full queue the oldest pending task is removed
// to make room and the drop counter increments; if the queue is still full
// after that (a producer race filled it again), the new task is dropped
// instead.
func (w *worker) enqueue(t task) {
	select {
	case w.tasks <- t:
		return
	default:
	}

	select {
	case <-w.tasks:
		w.handle.drops.Add(1)
	default:
	}

	select {
	case w.tasks <- t:
	default:
		w.handle.drops.Add(1)
	}
}

func (w *worker) run() {
	defer close(w.done)

	for {
		select {
		case t := <-w.tasks:
			w.write(t)
		case <-w.quit:
			w.drain()
			return
		}
	}
}

// drain delivers queued tasks for at most the grace period, then abandons
// the rest with a warning rather than delaying shutdown.
func (w *worker) drain() {
	deadline := time.NewTimer(w.grace)
	defer deadline.Stop()

	for {
		select {
		case t := <-w.tasks:
			w.write(t)
		case <-deadline.C:
			w.abandon()
			return
		default:
			return
		}
	}
}

// abandon empties the queue, counting the losses. Both the drain deadline
// and a stop timeout can reach here; only the first does the work.
func (w *worker) abandon() {
	if !w.abandoned.CompareAndSwap(false, true) {
		return
	}

	n := 0
	for {
		select {
		case <-w.tasks:
			n++
		default:
			if n > 0 {
				w.handle.drops.Add(uint64(n))
				w.fallback.warn(fmt.Sprintf(
					"dropped %d queued records after %s shutdown grace", n, w.grace))
			}
			return
		}
	}
}

func (w *worker) write(t task) {
	if err := w.adapter.Handle(t.msg, t.rec); err != nil {
		w.handle.failed.Add(1)
		w.fallback.failure(err, t.rec)
	}
}

// stop signals the worker and waits for its drain to finish. A worker
// wedged inside a hanging adapter call cannot be interrupted; after the
// grace period its queue is abandoned so shutdown still completes.
func (w *worker) stop() {
	close(w.quit)
	select {
	case <-w.done:
	case <-time.After(w.grace + 100*time.Millisecond):
		w.abandon()
	}
}
