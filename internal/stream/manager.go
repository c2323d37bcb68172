// Package stream maintains a single live subscription to the workflow event
// stream and delivers parsed events to one consumer.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/metrics"
	"github.com/telhawk-systems/opsboard/internal/models"
)

// State is the connection state of a Manager.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// MarshalText renders the state name in JSON and YAML output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "disconnected":
		*s = Disconnected
	case "connecting":
		*s = Connecting
	case "connected":
		*s = Connected
	default:
		return fmt.Errorf("unknown stream state %q", text)
	}
	return nil
}

// EventHandler consumes delivered events. It runs on the transport goroutine,
// so delivery order equals transport order.
type EventHandler func(event models.WorkflowEvent)

// Status is a point-in-time view of the manager.
type Status struct {
	State       State     `json:"state"`
	URL         string    `json:"url,omitempty"`
	ConnectedAt time.Time `json:"connectedAt,omitzero"`
	Delivered   int64     `json:"delivered"`
	Dropped     int64     `json:"dropped"`
	LastError   string    `json:"lastError,omitempty"`
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// OnTransportError is called with a *TransportError after the manager
	// has been forced to Disconnected.
	OnTransportError func(err error)

	Logger *slog.Logger
}

// Manager owns at most one live subscription. Connect while connecting or
// connected is a no-op; Disconnect while disconnected is a no-op.
type Manager struct {
	mu         sync.Mutex
	transports *Registry
	onError    func(err error)
	logger     *slog.Logger

	state       State
	url         string
	generation  uint64
	conn        io.Closer
	cancel      context.CancelFunc
	handler     EventHandler
	connectedAt time.Time
	delivered   int64
	dropped     int64
	lastErr     error
}

// NewManager creates a disconnected manager using transports from reg.
func NewManager(reg *Registry, cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	metrics.StreamState.Set(float64(Disconnected))
	return &Manager{
		transports: reg,
		onError:    cfg.OnTransportError,
		logger:     cfg.Logger.With(logging.Component("stream")),
	}
}

// Connect opens a subscription to rawURL and delivers every parsed,
// non-handshake event to handler. It returns nil without opening a second
// transport if the manager is already connecting or connected.
func (m *Manager) Connect(ctx context.Context, rawURL string, handler EventHandler) error {
	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		return nil
	}

	transport, err := m.transports.Lookup(rawURL)
	if err != nil {
		m.lastErr = err
		m.mu.Unlock()
		return err
	}

	m.generation++
	gen := m.generation
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.setStateLocked(Connecting)
	m.url = rawURL
	m.handler = handler
	m.cancel = cancel
	m.lastErr = nil
	m.mu.Unlock()

	m.logger.Info("connecting to event stream", logging.URL(rawURL))

	conn, err := transport.Open(connCtx, rawURL, Handlers{
		OnMessage: func(data []byte) { m.deliver(gen, data) },
		OnError:   func(err error) { m.fail(gen, err) },
	})

	m.mu.Lock()
	if m.generation != gen {
		// Disconnected (or failed) while opening.
		m.mu.Unlock()
		cancel()
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		m.setStateLocked(Disconnected)
		m.cancel = nil
		tErr := &TransportError{URL: rawURL, Err: err}
		m.lastErr = tErr
		m.mu.Unlock()
		cancel()
		m.logger.Warn("event stream connect failed", logging.URL(rawURL), logging.Error(err))
		return tErr
	}
	m.conn = conn
	m.connectedAt = time.Now()
	m.setStateLocked(Connected)
	m.mu.Unlock()

	m.logger.Info("event stream connected", logging.URL(rawURL))
	return nil
}

// Disconnect tears down the subscription. Messages still in flight from the
// old connection are discarded.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.state == Disconnected {
		m.mu.Unlock()
		return
	}
	conn, cancel := m.teardownLocked()
	m.mu.Unlock()

	closeConn(conn, cancel)
	m.logger.Info("event stream disconnected")
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status returns a snapshot of the manager.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Status{
		State:     m.state,
		URL:       m.url,
		Delivered: m.delivered,
		Dropped:   m.dropped,
	}
	if m.state == Connected {
		s.ConnectedAt = m.connectedAt
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}

func (m *Manager) deliver(gen uint64, data []byte) {
	m.mu.Lock()
	if m.generation != gen || m.state == Disconnected {
		m.mu.Unlock()
		metrics.StreamMessagesTotal.WithLabelValues(metrics.OutcomeStale).Inc()
		return
	}
	handler := m.handler
	m.mu.Unlock()

	var event models.WorkflowEvent
	if err := json.Unmarshal(data, &event); err != nil {
		m.drop()
		metrics.StreamMessagesTotal.WithLabelValues(metrics.OutcomeParseError).Inc()
		m.logger.Warn("dropping stream message", logging.Error(&ParseError{Data: data, Err: err}))
		return
	}

	if event.IsHandshake() {
		metrics.StreamMessagesTotal.WithLabelValues(metrics.OutcomeHandshake).Inc()
		m.logger.Debug("stream handshake received")
		return
	}

	m.mu.Lock()
	m.delivered++
	m.mu.Unlock()
	metrics.StreamMessagesTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()

	if handler != nil {
		handler(event)
	}
}

func (m *Manager) fail(gen uint64, err error) {
	m.mu.Lock()
	if m.generation != gen || m.state == Disconnected {
		m.mu.Unlock()
		return
	}
	url := m.url
	tErr := &TransportError{URL: url, Err: err}
	m.lastErr = tErr
	conn, cancel := m.teardownLocked()
	onError := m.onError
	m.mu.Unlock()

	// Closing may wait on the goroutine reporting this error.
	go closeConn(conn, cancel)

	metrics.StreamTransportErrors.Inc()
	if !errors.Is(err, context.Canceled) {
		m.logger.Error("event stream dropped", logging.URL(url), logging.Error(err))
	}
	if onError != nil {
		onError(tErr)
	}
}

func (m *Manager) drop() {
	m.mu.Lock()
	m.dropped++
	m.mu.Unlock()
}

func (m *Manager) teardownLocked() (io.Closer, context.CancelFunc) {
	m.generation++
	conn, cancel := m.conn, m.cancel
	m.conn = nil
	m.cancel = nil
	m.handler = nil
	m.setStateLocked(Disconnected)
	return conn, cancel
}

func (m *Manager) setStateLocked(s State) {
	m.state = s
	metrics.StreamState.Set(float64(s))
}

func closeConn(conn io.Closer, cancel context.CancelFunc) {
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
}
