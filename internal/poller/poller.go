// Package poller periodically fetches one endpoint and caches the latest
// successful result.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/metrics"
)

// FetchFunc performs one fetch against the poller's endpoint.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// FetchError reports a single failed poll attempt. The cached value is kept.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config configures a Poller.
type Config struct {
	// Endpoint names the polled resource in logs, metrics and errors.
	Endpoint string

	// Interval between scheduled fetches.
	Interval time.Duration

	// Timeout bounds each fetch. Zero means no timeout.
	Timeout time.Duration

	// NewTicker overrides the schedule source. Defaults to NewRealTicker.
	NewTicker TickerFactory

	// OnError is called after every failed fetch.
	OnError func(err error)

	Logger *slog.Logger
}

// Poller runs fetch immediately on Start and then every interval. Fetches are
// not serialized: overlapping fetches may race and the last to resolve wins.
type Poller[T any] struct {
	mu        sync.RWMutex
	fetch     FetchFunc[T]
	endpoint  string
	interval  time.Duration
	timeout   time.Duration
	newTicker TickerFactory
	onError   func(err error)
	logger    *slog.Logger

	running  bool
	ticker   Ticker
	stopChan chan struct{}
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	value     T
	hasValue  bool
	updatedAt time.Time
	lastErr   error
	listeners []func(T)
}

// New creates a stopped poller.
func New[T any](fetch FetchFunc[T], cfg Config) *Poller[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewRealTicker
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Poller[T]{
		fetch:     fetch,
		endpoint:  cfg.Endpoint,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		newTicker: cfg.NewTicker,
		onError:   cfg.OnError,
		logger:    cfg.Logger.With(logging.Component("poller"), logging.Endpoint(cfg.Endpoint)),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start fetches immediately and then on every interval.
// Calling Start while running is a no-op.
func (p *Poller[T]) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running || p.closed {
		return
	}
	p.startLocked()
}

// Stop cancels the schedule. In-flight fetches still complete and update the cache.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// UpdateInterval changes the schedule period. A running poller is restarted
// with an immediate fetch; a stopped poller only records the new interval.
func (p *Poller[T]) UpdateInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.interval = interval
	if p.running {
		p.stopLocked()
		p.startLocked()
	}
}

// Refresh triggers one out-of-band fetch without touching the schedule.
func (p *Poller[T]) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.fetchAsyncLocked()
}

// Close stops the poller, aborts in-flight fetches and waits for them to return.
// Completions landing after Close are discarded.
func (p *Poller[T]) Close() {
	p.mu.Lock()
	p.stopLocked()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// OnUpdate registers fn to be called with every successfully fetched value.
func (p *Poller[T]) OnUpdate(fn func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Value returns the last successfully fetched value.
func (p *Poller[T]) Value() (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value, p.hasValue
}

// LastError returns the error from the most recent fetch, nil after a success.
func (p *Poller[T]) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// UpdatedAt returns when the cache was last replaced.
func (p *Poller[T]) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

// Running reports whether the schedule is active.
func (p *Poller[T]) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Interval returns the current schedule period.
func (p *Poller[T]) Interval() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.interval
}

// Status is a point-in-time view of a poller.
type Status struct {
	Endpoint  string    `json:"endpoint"`
	Running   bool      `json:"running"`
	Interval  int64     `json:"intervalMs"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
	LastError string    `json:"lastError,omitempty"`
}

// Status returns a snapshot of the poller's schedule and cache.
func (p *Poller[T]) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Status{
		Endpoint:  p.endpoint,
		Running:   p.running,
		Interval:  p.interval.Milliseconds(),
		UpdatedAt: p.updatedAt,
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}

// Endpoint returns the polled endpoint name.
func (p *Poller[T]) Endpoint() string {
	return p.endpoint
}

func (p *Poller[T]) startLocked() {
	p.running = true
	p.ticker = p.newTicker(p.interval)
	p.stopChan = make(chan struct{})

	p.logger.Debug("poller started", logging.Interval(p.interval))

	p.wg.Add(1)
	go p.run(p.ticker, p.stopChan)

	p.fetchAsyncLocked()
}

func (p *Poller[T]) stopLocked() {
	if !p.running {
		return
	}
	p.running = false
	p.ticker.Stop()
	close(p.stopChan)
	p.ticker = nil
	p.stopChan = nil

	p.logger.Debug("poller stopped")
}

func (p *Poller[T]) run(ticker Ticker, stop <-chan struct{}) {
	defer p.wg.Done()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			p.mu.Lock()
			// A tick may race Stop or UpdateInterval; only the current schedule fetches.
			if p.stopChan != stop {
				p.mu.Unlock()
				return
			}
			p.fetchAsyncLocked()
			p.mu.Unlock()
		}
	}
}

func (p *Poller[T]) fetchAsyncLocked() {
	p.wg.Add(1)
	go p.doFetch()
}

func (p *Poller[T]) doFetch() {
	defer p.wg.Done()

	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	value, err := p.fetch(ctx)
	elapsed := time.Since(start)
	metrics.PollDuration.WithLabelValues(p.endpoint).Observe(elapsed.Seconds())

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	if err != nil {
		fetchErr := &FetchError{Endpoint: p.endpoint, Err: err}
		p.lastErr = fetchErr
		onError := p.onError
		p.mu.Unlock()

		metrics.PollFetchesTotal.WithLabelValues(p.endpoint, "error").Inc()
		if !errors.Is(err, context.Canceled) {
			p.logger.Warn("poll failed", logging.Error(err), logging.Duration(elapsed))
		}
		if onError != nil {
			onError(fetchErr)
		}
		return
	}

	p.value = value
	p.hasValue = true
	p.updatedAt = time.Now()
	p.lastErr = nil
	listeners := make([]func(T), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	metrics.PollFetchesTotal.WithLabelValues(p.endpoint, "success").Inc()
	p.logger.Debug("poll complete", logging.Duration(elapsed))

	for _, fn := range listeners {
		fn(value)
	}
}
