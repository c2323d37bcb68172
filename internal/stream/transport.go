package stream

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

// Handlers receive raw payloads and terminal errors from a transport.
// OnMessage is called sequentially in arrival order. OnError is called at most
// once, when the connection drops without having been closed by the caller.
type Handlers struct {
	OnMessage func(data []byte)
	OnError   func(err error)
}

// Transport opens a live subscription to a stream URL. Closing the returned
// io.Closer ends the subscription and must not block on in-progress delivery.
type Transport interface {
	Open(ctx context.Context, rawURL string, h Handlers) (io.Closer, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, rawURL string, h Handlers) (io.Closer, error)

// Open calls f.
func (f TransportFunc) Open(ctx context.Context, rawURL string, h Handlers) (io.Closer, error) {
	return f(ctx, rawURL, h)
}

// Registry selects a Transport by URL scheme.
type Registry struct {
	mu         sync.RWMutex
	transports map[string]Transport
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transports: make(map[string]Transport)}
}

// Register binds one or more schemes to t.
func (r *Registry) Register(t Transport, schemes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range schemes {
		r.transports[strings.ToLower(s)] = t
	}
}

// Lookup returns the transport for rawURL's scheme.
func (r *Registry) Lookup(rawURL string) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid stream url %q: %w", rawURL, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transports[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("no stream transport for scheme %q", u.Scheme)
	}
	return t, nil
}

// Schemes lists the registered schemes.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.transports))
	for s := range r.transports {
		out = append(out, s)
	}
	return out
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
