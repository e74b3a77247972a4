package dispatch

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/logfan/logfan/core"
)

// dedupState is the duplicate-suppression proxy wrapped around one binding.
// Each fingerprint moves through Unseen -> Active(count, deadline) ->
// Expired; expiry with a nonzero count emits one summary record through the
// binding's normal delivery path.
//
// A single mutex guards the whole cache. Producers and the periodic sweep
// serialize on it, which makes the expire-and-summarize transition atomic:
// a record arriving exactly at window expiry resolves to exactly one of
// "suppressed" or "delivered after summary".
type dedupState struct {
	window time.Duration
	key    func(rec *core.Record) string
	b      *binding

	mu      sync.Mutex
	entries map[string]*dedupEntry

	ticker *time.Ticker
	quit   chan struct{}
	done   chan struct{}
}

type dedupEntry struct {
	firstSeen time.Time
	deadline  time.Time
	count     int
	last      *core.Record
}

// verdict is the outcome of consulting the proxy for one candidate record.
type verdict struct {
	deliver bool
	summary *core.Record
}

func newDedupState(cfg DedupConfig, b *binding) *dedupState {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = cfg.Window / 4
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}

	s := &dedupState{
		window:  cfg.Window,
		key:     cfg.Key,
		b:       b,
		entries: make(map[string]*dedupEntry),
		ticker:  time.NewTicker(interval),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *dedupState) keyFor(rec *core.Record) string {
	if s.key != nil {
		return s.key(rec)
	}
	return strconv.FormatUint(rec.Fingerprint(), 16)
}

// observe decides the fate of one candidate record and advances the state
// machine. A deadline at or before now counts as expired; clock skew that
// produces a negative remaining window therefore resolves to immediate
// expiry rather than indefinite suppression.
func (s *dedupState) observe(rec *core.Record, now time.Time) verdict {
	k := s.keyFor(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok {
		s.entries[k] = &dedupEntry{
			firstSeen: now,
			deadline:  now.Add(s.window),
			last:      rec,
		}
		return verdict{deliver: true}
	}

	if now.Before(e.deadline) {
		e.count++
		e.last = rec
		return verdict{deliver: false}
	}

	// Window expired with traffic continuing: summarize, re-arm.
	var summary *core.Record
	if e.count > 0 {
		summary = s.summaryRecord(e, now)
	}
	e.firstSeen = now
	e.deadline = now.Add(s.window)
	e.count = 0
	e.last = rec
	return verdict{deliver: true, summary: summary}
}

// sweep expires entries whose window passed without new traffic, returning
// the summary records to deliver. Entries return to Unseen either way.
func (s *dedupState) sweep(now time.Time) []*core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summaries []*core.Record
	for k, e := range s.entries {
		if now.Before(e.deadline) {
			continue
		}
		if e.count > 0 {
			summaries = append(summaries, s.summaryRecord(e, now))
		}
		delete(s.entries, k)
	}
	return summaries
}

// flush emits summaries for every pending repeat count regardless of
// deadline. Called on shutdown so counts are not silently lost.
func (s *dedupState) flush() []*core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summaries []*core.Record
	for k, e := range s.entries {
		if e.count > 0 {
			summaries = append(summaries, s.summaryRecord(e, time.Now()))
		}
		delete(s.entries, k)
	}
	return summaries
}

// summaryRecord synthesizes the "repeated N times" record for an entry.
// It inherits level, category, and pipeline from the suppressed traffic so
// it routes and formats exactly like the records it stands in for.
func (s *dedupState) summaryRecord(e *dedupEntry, now time.Time) *core.Record {
	return &core.Record{
		Time:     now.UTC(),
		Level:    e.last.Level,
		Category: e.last.Category,
		Pipeline: e.last.Pipeline,
		Tags:     e.last.Tags,
		Message: fmt.Sprintf("previous message repeated %d times during the last %s",
			e.count, s.window),
	}
}

func (s *dedupState) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ticker.C:
			for _, sum := range s.sweep(time.Now()) {
				s.b.deliver(sum)
			}
		case <-s.quit:
			s.ticker.Stop()
			for _, sum := range s.flush() {
				s.b.deliver(sum)
			}
			return
		}
	}
}

// stop halts the sweeper and flushes pending summaries.
func (s *dedupState) stop() {
	close(s.quit)
	<-s.done
}
