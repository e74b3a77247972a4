package dispatch_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logfan/logfan/core"
	"github.com/logfan/logfan/dispatch"
)

// waitFor polls until cond holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestAsyncDelivery(t *testing.T) {
	t.Parallel()

	d := dispatch.New(dispatch.Config{})
	defer d.Close()

	sink := &captureAdapter{}
	handle, err := d.Add(sink, dispatch.BindingConfig{
		Async:     true,
		QueueSize: 64,
		Formatter: rawFormatter(),
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		out, err := d.Dispatch(core.NewRecord(core.InfoLevel, "app", fmt.Sprintf("msg-%d", i)))
		require.NoError(t, err)
		assert.Equal(t, 1, out.Delivered, "enqueue counts as accepted")
	}

	waitFor(t, time.Second, func() bool { return sink.count() == 10 })
	assert.Zero(t, handle.Drops())
	assert.Equal(t, uint64(10), handle.Delivered())
}

// Per-binding ordering: the worker delivers tasks strictly in enqueue
// order even though the producer runs concurrently with it.
func TestAsyncPreservesOrder(t *testing.T) {
	t.Parallel()

	d := dispatch.New(dispatch.Config{})
	defer d.Close()

	sink := &captureAdapter{}
	_, err := d.Add(sink, dispatch.BindingConfig{
		Async:     true,
		QueueSize: 1000,
		Formatter: rawFormatter(),
	})
	require.NoError(t, err)

	const n = 500
	for i := 0; i < n; i++ {
		_, err := d.Dispatch(core.NewRecord(core.InfoLevel, "app", fmt.Sprintf("%06d", i)))
		require.NoError(t, err)
	}

	waitFor(t, 2*time.Second, func() bool { return sink.count() == n })

	got := sink.all()
	for i := 0; i < n; i++ {
		require.Equal(t, fmt.Sprintf("%06d", i), got[i], "delivery order at %d", i)
	}
}

// blockingAdapter holds deliveries until released so tests can fill the
// queue deterministically.
type blockingAdapter struct {
	captureAdapter
	gate chan struct{}
	once sync.Once
}

func (a *blockingAdapter) Handle(formatted string, rec *core.Record) error {
	<-a.gate
	return a.captureAdapter.Handle(formatted, rec)
}

func (a *blockingAdapter) release() { a.once.Do(func() { close(a.gate) }) }

// On a full queue the oldest pending task is dropped: the caller is never
// blocked and the drop counter increments.
func TestAsyncQueueOverflowDropsOldest(t *testing.T) {
	t.Parallel()

	d := dispatch.New(dispatch.Config{DrainGrace: 500 * time.Millisecond})
	defer d.Close()

	sink := &blockingAdapter{gate: make(chan struct{})}
	handle, err := d.Add(sink, dispatch.BindingConfig{
		Async:     true,
		QueueSize: 2,
		Formatter: rawFormatter(),
	})
	require.NoError(t, err)

	// The worker may pull one task off the queue and block in Handle;
	// everything beyond queue capacity forces drop-oldest.
	const sent = 20
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < sent; i++ {
			d.Dispatch(core.NewRecord(core.InfoLevel, "app", fmt.Sprintf("m%d", i)))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked the caller")
	}

	sink.release()
	waitFor(t, time.Second, func() bool {
		return handle.Drops() > 0 && sink.count() > 0
	})

	// Everything sent is accounted for: delivered now, still queued, or
	// dropped.
	assert.Equal(t, uint64(sent), handle.Delivered())
	assert.GreaterOrEqual(t, uint64(sent), handle.Drops()+uint64(sink.count()))
}

func TestAsyncWorkerFailureContinues(t *testing.T) {
	t.Parallel()

	fallback := &captureAdapter{}
	d := dispatch.New(dispatch.Config{Fallback: fallback})
	defer d.Close()

	flaky := &flakyAdapter{failOn: "bad"}
	handle, err := d.Add(flaky, dispatch.BindingConfig{
		Async:     true,
		Formatter: rawFormatter(),
	})
	require.NoError(t, err)

	for _, msg := range []string{"ok-1", "bad", "ok-2"} {
		_, err := d.Dispatch(core.NewRecord(core.InfoLevel, "app", msg))
		require.NoError(t, err)
	}

	waitFor(t, time.Second, func() bool { return flaky.count() == 2 })
	assert.Equal(t, []string{"ok-1", "ok-2"}, flaky.all())
	assert.Equal(t, uint64(1), handle.Failed())
	waitFor(t, time.Second, func() bool { return fallback.count() == 1 })
}

// flakyAdapter fails exactly the deliveries whose formatted text matches.
type flakyAdapter struct {
	captureAdapter
	failOn string
}

func (a *flakyAdapter) Handle(formatted string, rec *core.Record) error {
	if formatted == a.failOn {
		return errors.New("simulated sink failure")
	}
	return a.captureAdapter.Handle(formatted, rec)
}

func TestCloseDrainsAsyncQueues(t *testing.T) {
	t.Parallel()

	d := dispatch.New(dispatch.Config{})

	sink := &captureAdapter{}
	_, err := d.Add(sink, dispatch.BindingConfig{
		Async:     true,
		QueueSize: 1000,
		Formatter: rawFormatter(),
	})
	require.NoError(t, err)

	const n = 200
	for i := 0; i < n; i++ {
		_, err := d.Dispatch(core.NewRecord(core.InfoLevel, "app", "queued"))
		require.NoError(t, err)
	}

	require.NoError(t, d.Close())
	assert.Equal(t, n, sink.count(), "Close drains queued tasks")
}

// A sink that never finishes must not hold Close beyond the grace period.
func TestCloseAbandonsAfterGrace(t *testing.T) {
	t.Parallel()

	fallback := &captureAdapter{}
	d := dispatch.New(dispatch.Config{
		Fallback:   fallback,
		DrainGrace: 50 * time.Millisecond,
	})

	stuck := &blockingAdapter{gate: make(chan struct{})}
	handle, err := d.Add(stuck, dispatch.BindingConfig{
		Async:     true,
		QueueSize: 8,
		Formatter: rawFormatter(),
	})
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		d.Dispatch(core.NewRecord(core.InfoLevel, "app", "stuck"))
	}

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked past the drain grace")
	}

	stuck.release()
	assert.Positive(t, handle.Drops(), "abandoned tasks are counted as drops")
}
