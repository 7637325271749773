package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "condition not met in time")
}

func TestScheduleOnceAtFires(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Register("hook", func(ctx context.Context) { fired.Add(1) })
	s.Start(context.Background())

	s.ScheduleOnceAt(time.Now().Add(10*time.Millisecond), "hook")
	waitFor(t, func() bool { return fired.Load() == 1 })

	// One-shot: no second firing.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestScheduleOnceAtPastTimeFiresImmediately(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Register("hook", func(ctx context.Context) { fired.Add(1) })
	s.Start(context.Background())

	s.ScheduleOnceAt(time.Now().Add(-time.Hour), "hook")
	waitFor(t, func() bool { return fired.Load() == 1 })
}

func TestScheduleRecurringFiresRepeatedly(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Register("hook", func(ctx context.Context) { fired.Add(1) })
	s.Start(context.Background())

	s.ScheduleRecurring(10*time.Millisecond, "hook")
	waitFor(t, func() bool { return fired.Load() >= 3 })
}

func TestCancelAllDropsPendingFirings(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Register("hook", func(ctx context.Context) { fired.Add(1) })
	s.Start(context.Background())

	s.ScheduleOnceAt(time.Now().Add(50*time.Millisecond), "hook")
	s.ScheduleRecurring(20*time.Millisecond, "hook")
	s.CancelAll("hook")

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCancelAllKeepsOtherHooks(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var a, b atomic.Int32
	s.Register("a", func(ctx context.Context) { a.Add(1) })
	s.Register("b", func(ctx context.Context) { b.Add(1) })
	s.Start(context.Background())

	s.ScheduleOnceAt(time.Now().Add(20*time.Millisecond), "a")
	s.ScheduleOnceAt(time.Now().Add(20*time.Millisecond), "b")
	s.CancelAll("a")

	waitFor(t, func() bool { return b.Load() == 1 })
	assert.Equal(t, int32(0), a.Load())
}

func TestFiringWithCancelledContextIsDropped(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Register("hook", func(ctx context.Context) { fired.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	s.ScheduleOnceAt(time.Now(), "hook")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestUnregisteredHookDoesNotPanic(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()
	s.Start(context.Background())

	s.ScheduleOnceAt(time.Now(), "ghost")
	time.Sleep(30 * time.Millisecond)
}
