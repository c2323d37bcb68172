package stream

import (
	"log/slog"
	"net/http"
)

// RegistryOptions tunes the transports installed by DefaultRegistry.
type RegistryOptions struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// DefaultRegistry registers every built-in transport:
// http/https (SSE), ws/wss, nats and redis/rediss.
func DefaultRegistry(opts RegistryOptions) *Registry {
	r := NewRegistry()
	r.Register(NewSSETransport(opts.HTTPClient), "http", "https")
	r.Register(NewWebSocketTransport(nil), "ws", "wss")
	r.Register(&NATSTransport{Logger: opts.Logger}, "nats")
	r.Register(&RedisTransport{}, "redis", "rediss")
	return r
}
