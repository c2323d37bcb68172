package mockbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/telhawk-systems/opsboard/common/httputil"
	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/common/middleware"
	"github.com/telhawk-systems/opsboard/internal/apiclient"
	"github.com/telhawk-systems/opsboard/internal/models"
)

const (
	anomalyCount   = 12
	timelineCount  = 150
	timelineSpread = 24 * time.Hour

	// subscriberBuffer is the per-client backlog; slower clients miss events.
	subscriberBuffer = 16
)

// Config configures a Server.
type Config struct {
	// EventInterval is the period between generated stream events.
	EventInterval time.Duration

	// Seed makes generated data reproducible. Zero picks a random seed.
	Seed int64

	// Publishers receive every generated event in addition to stream clients.
	Publishers []Publisher

	Logger *slog.Logger
}

// Server serves the stats endpoints and the live event stream.
type Server struct {
	gen        *Generator
	interval   time.Duration
	publishers []Publisher
	logger     *slog.Logger
	upgrader   websocket.Upgrader

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// New creates a mock backend.
func New(cfg Config) *Server {
	if cfg.EventInterval <= 0 {
		cfg.EventInterval = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		gen:        NewGenerator(cfg.Seed),
		interval:   cfg.EventInterval,
		publishers: cfg.Publishers,
		logger:     cfg.Logger.With(logging.Component("mock")),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[chan []byte]struct{}),
	}
}

// Handler returns the HTTP routes of the mock backend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+apiclient.PathOverview, func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, s.gen.Overview())
	})
	mux.HandleFunc("GET "+apiclient.PathAnomalies, func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, models.AnomaliesResponse{Anomalies: s.gen.Anomalies(anomalyCount)})
	})
	mux.HandleFunc("GET "+apiclient.PathTimeline, func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, models.TimelineResponse{Events: s.gen.Timeline(timelineCount, timelineSpread)})
	})
	mux.HandleFunc("GET "+apiclient.PathEvents, s.serveSSE)
	mux.HandleFunc("GET /ws", s.serveWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "opsboard-mock"})
	})

	return middleware.RequestID(middleware.AccessLog(s.logger)(mux))
}

// Run emits a generated event every interval until ctx is cancelled, then
// closes the publishers.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.closePublishers()

	s.logger.Info("mock event generator started", logging.Interval(s.interval), slog.Int("publishers", len(s.publishers)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Emit(ctx, s.gen.Event())
		}
	}
}

// Emit sends event to every stream client and publisher. Publisher failures
// are logged and do not stop the stream.
func (s *Server) Emit(ctx context.Context, event models.WorkflowEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to encode event", logging.Error(err))
		return
	}

	s.broadcast(data)
	for _, p := range s.publishers {
		if err := p.Publish(ctx, data); err != nil {
			s.logger.Warn("failed to publish event", logging.EventID(event.ID), logging.Error(err))
		}
	}
	s.logger.Debug("event emitted", logging.EventID(event.ID), logging.EventType(string(event.Type)))
}

// Subscribers returns the number of connected stream clients.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Server) subscribe() (chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- data:
		default:
		}
	}
}

func (s *Server) closePublishers() {
	for _, p := range s.publishers {
		if err := p.Close(); err != nil {
			s.logger.Warn("failed to close publisher", logging.Error(err))
		}
	}
}

func (s *Server) serveSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, unsubscribe := s.subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	handshake, _ := json.Marshal(Handshake())
	if _, err := fmt.Fprintf(w, "data: %s\n\n", handshake); err != nil {
		return
	}
	flusher.Flush()
	s.logger.Info("sse client connected", slog.String("remote_addr", r.RemoteAddr))

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", slog.String("remote_addr", r.RemoteAddr))
			return
		case data := <-ch:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.subscribe()
	defer unsubscribe()

	// The client never sends data; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	handshake, _ := json.Marshal(Handshake())
	if err := conn.WriteMessage(websocket.TextMessage, handshake); err != nil {
		return
	}
	s.logger.Info("websocket client connected", slog.String("remote_addr", r.RemoteAddr))

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case data := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
