package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/opsboard/common/logging"
)

const waitFor = 2 * time.Second

type fakeTicker struct {
	period  time.Duration
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

func (f *fakeTicker) tick() {
	f.ch <- time.Now()
}

// fakeClock records every ticker the poller creates.
type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{period: d, ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) all() []*fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*fakeTicker, len(c.tickers))
	copy(out, c.tickers)
	return out
}

// countingFetcher counts calls and returns the call number.
type countingFetcher struct {
	calls atomic.Int64
	mu    sync.Mutex
	err   error
}

func (f *countingFetcher) fetch(ctx context.Context) (int, error) {
	n := int(f.calls.Add(1))
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return n, nil
}

func (f *countingFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *countingFetcher) count() int {
	return int(f.calls.Load())
}

func newTestPoller(t *testing.T, fetch FetchFunc[int], interval time.Duration) (*Poller[int], *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	p := New(fetch, Config{
		Endpoint:  "/stats/test",
		Interval:  interval,
		NewTicker: clock.NewTicker,
		Logger:    logging.Discard(),
	})
	t.Cleanup(p.Close)
	return p, clock
}

func TestPoller_StartFetchesImmediately(t *testing.T) {
	f := &countingFetcher{}
	p, clock := newTestPoller(t, f.fetch, 5*time.Second)

	p.Start()

	require.Eventually(t, func() bool { return f.count() == 1 }, waitFor, time.Millisecond)
	assert.True(t, p.Running())
	require.Len(t, clock.all(), 1)
	assert.Equal(t, 5*time.Second, clock.all()[0].period)

	require.Eventually(t, func() bool {
		v, ok := p.Value()
		return ok && v == 1
	}, waitFor, time.Millisecond)
}

func TestPoller_StartTwiceIsIdempotent(t *testing.T) {
	f := &countingFetcher{}
	p, clock := newTestPoller(t, f.fetch, time.Second)

	p.Start()
	p.Start()

	require.Len(t, clock.all(), 1, "second Start must not create another schedule")

	clock.all()[0].tick()

	require.Eventually(t, func() bool { return f.count() == 2 }, waitFor, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, f.count())
}

func TestPoller_UpdateIntervalWhileRunning(t *testing.T) {
	f := &countingFetcher{}
	p, clock := newTestPoller(t, f.fetch, 10*time.Second)

	p.Start()
	require.Eventually(t, func() bool { return f.count() == 1 }, waitFor, time.Millisecond)

	p.UpdateInterval(30 * time.Second)

	require.Eventually(t, func() bool { return f.count() == 2 }, waitFor, time.Millisecond)

	tickers := clock.all()
	require.Len(t, tickers, 2)
	assert.True(t, tickers[0].stopped.Load(), "old schedule must be stopped")
	assert.False(t, tickers[1].stopped.Load())
	assert.Equal(t, 30*time.Second, tickers[1].period)
	assert.Equal(t, 30*time.Second, p.Interval())

	tickers[1].tick()
	require.Eventually(t, func() bool { return f.count() == 3 }, waitFor, time.Millisecond)
}

func TestPoller_UpdateIntervalWhileStopped(t *testing.T) {
	f := &countingFetcher{}
	p, clock := newTestPoller(t, f.fetch, 10*time.Second)

	p.UpdateInterval(60 * time.Second)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, f.count())
	assert.Empty(t, clock.all())
	assert.False(t, p.Running())
	assert.Equal(t, 60*time.Second, p.Interval())

	p.Start()
	require.Len(t, clock.all(), 1)
	assert.Equal(t, 60*time.Second, clock.all()[0].period)
}

func TestPoller_UpdateIntervalIgnoresNonPositive(t *testing.T) {
	f := &countingFetcher{}
	p, _ := newTestPoller(t, f.fetch, 10*time.Second)

	p.UpdateInterval(0)
	p.UpdateInterval(-time.Second)

	assert.Equal(t, 10*time.Second, p.Interval())
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	f := &countingFetcher{}
	p, clock := newTestPoller(t, f.fetch, time.Second)

	p.Start()
	require.Eventually(t, func() bool { return f.count() == 1 }, waitFor, time.Millisecond)

	p.Stop()
	p.Stop()

	assert.False(t, p.Running())
	assert.True(t, clock.all()[0].stopped.Load())
}

func TestPoller_RefreshDoesNotSchedule(t *testing.T) {
	f := &countingFetcher{}
	p, clock := newTestPoller(t, f.fetch, time.Second)

	p.Refresh()

	require.Eventually(t, func() bool { return f.count() == 1 }, waitFor, time.Millisecond)
	assert.Empty(t, clock.all())
	assert.False(t, p.Running())
}

func TestPoller_FailureKeepsCachedValue(t *testing.T) {
	f := &countingFetcher{}
	var errCount atomic.Int64
	clock := &fakeClock{}
	p := New(f.fetch, Config{
		Endpoint:  "/stats/overview",
		Interval:  time.Second,
		NewTicker: clock.NewTicker,
		OnError:   func(error) { errCount.Add(1) },
		Logger:    logging.Discard(),
	})
	t.Cleanup(p.Close)

	p.Start()
	require.Eventually(t, func() bool {
		_, ok := p.Value()
		return ok
	}, waitFor, time.Millisecond)

	f.setErr(errors.New("connection refused"))
	clock.all()[0].tick()

	require.Eventually(t, func() bool { return p.LastError() != nil }, waitFor, time.Millisecond)

	v, ok := p.Value()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, p.Running(), "schedule keeps ticking after a failure")
	assert.Equal(t, int64(1), errCount.Load())

	var fetchErr *FetchError
	require.ErrorAs(t, p.LastError(), &fetchErr)
	assert.Equal(t, "/stats/overview", fetchErr.Endpoint)
	assert.EqualError(t, fetchErr.Err, "connection refused")

	// Next tick recovers.
	f.setErr(nil)
	clock.all()[0].tick()
	require.Eventually(t, func() bool { return p.LastError() == nil }, waitFor, time.Millisecond)
}

func TestPoller_LastToResolveWins(t *testing.T) {
	slowRelease := make(chan struct{})
	var calls atomic.Int64

	fetch := func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			<-slowRelease
			return 100, nil
		}
		return 200, nil
	}
	p, _ := newTestPoller(t, fetch, time.Second)

	p.Refresh()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, time.Millisecond)
	p.Refresh()

	require.Eventually(t, func() bool {
		v, ok := p.Value()
		return ok && v == 200
	}, waitFor, time.Millisecond)

	close(slowRelease)

	require.Eventually(t, func() bool {
		v, _ := p.Value()
		return v == 100
	}, waitFor, time.Millisecond)
}

func TestPoller_StopDoesNotCancelInFlight(t *testing.T) {
	release := make(chan struct{})
	fetch := func(ctx context.Context) (int, error) {
		<-release
		return 7, ctx.Err()
	}
	p, _ := newTestPoller(t, fetch, time.Second)

	p.Start()
	p.Stop()
	close(release)

	require.Eventually(t, func() bool {
		v, ok := p.Value()
		return ok && v == 7
	}, waitFor, time.Millisecond)
}

func TestPoller_CloseDropsLateCompletions(t *testing.T) {
	fetch := func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 42, nil
	}
	clock := &fakeClock{}
	p := New(fetch, Config{Endpoint: "/stats/test", NewTicker: clock.NewTicker, Logger: logging.Discard()})

	var updates atomic.Int64
	p.OnUpdate(func(int) { updates.Add(1) })

	p.Start()
	p.Close()

	_, ok := p.Value()
	assert.False(t, ok)
	assert.Equal(t, int64(0), updates.Load())

	p.Start()
	p.Refresh()
	assert.False(t, p.Running(), "closed poller cannot be restarted")
}

func TestPoller_OnUpdate(t *testing.T) {
	f := &countingFetcher{}
	p, _ := newTestPoller(t, f.fetch, time.Second)

	got := make(chan int, 4)
	p.OnUpdate(func(v int) { got <- v })

	p.Refresh()

	select {
	case v := <-got:
		assert.Equal(t, 1, v)
	case <-time.After(waitFor):
		t.Fatal("OnUpdate not called")
	}
	assert.False(t, p.UpdatedAt().IsZero())
}

func TestPoller_Timeout(t *testing.T) {
	fetch := func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	p := New(fetch, Config{
		Endpoint: "/stats/slow",
		Timeout:  10 * time.Millisecond,
		Logger:   logging.Discard(),
	})
	t.Cleanup(p.Close)

	p.Refresh()

	require.Eventually(t, func() bool { return p.LastError() != nil }, waitFor, time.Millisecond)
	assert.ErrorIs(t, p.LastError(), context.DeadlineExceeded)
}

func TestPoller_Status(t *testing.T) {
	f := &countingFetcher{}
	p, _ := newTestPoller(t, f.fetch, 5*time.Second)

	s := p.Status()
	assert.Equal(t, "/stats/test", s.Endpoint)
	assert.False(t, s.Running)
	assert.Equal(t, int64(5000), s.Interval)
	assert.True(t, s.UpdatedAt.IsZero())

	f.setErr(errors.New("boom"))
	p.Start()
	require.Eventually(t, func() bool { return p.Status().LastError != "" }, waitFor, time.Millisecond)
	assert.True(t, p.Status().Running)
	assert.Contains(t, p.Status().LastError, "boom")
}
