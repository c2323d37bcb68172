// Package nats implements the messaging interfaces on a core NATS connection.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/telhawk-systems/opsboard/common/messaging"
)

// Config holds connection settings.
type Config struct {
	URL  string
	Name string

	// MaxReconnects bounds reconnect attempts; -1 retries forever.
	// Ignored when NoReconnect is set.
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration

	// NoReconnect closes the connection on the first disconnect instead of
	// retrying, so OnClosed fires with the disconnect error.
	NoReconnect bool

	// OnClosed runs once the connection is permanently closed, by Close or
	// Drain or after reconnects are exhausted. err is the last connection
	// error, nil for a clean close.
	OnClosed func(err error)

	Logger *slog.Logger
}

// DefaultConfig returns the local-server defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "opsboard",
		MaxReconnects: 5,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Client implements messaging.Client.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

var _ messaging.Client = (*Client)(nil)

// NewClient dials the server described by cfg.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(c *nats.Conn) {
			if cfg.OnClosed != nil {
				cfg.OnClosed(c.LastError())
			}
		}),
	}
	if cfg.NoReconnect {
		opts = append(opts, nats.NoReconnect())
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Client{conn: conn, logger: logger}, nil
}

// Publish sends data to subject without waiting for acknowledgement.
func (c *Client) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.conn.Publish(subject, data)
}

// Subscribe delivers every message on subject to handler, in arrival order.
func (c *Client) Subscribe(subject string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(context.Background(), toMessage(msg)); err != nil {
			c.logger.Warn("NATS handler error", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return subscription{sub}, nil
}

// Flush round-trips to the server, so subscriptions made before it are
// registered once it returns.
func (c *Client) Flush() error {
	return c.conn.Flush()
}

// Close unsubscribes everything and closes the connection. It is safe to
// call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		if sub.IsValid() {
			_ = sub.Unsubscribe()
		}
	}
	c.conn.Close()
	return nil
}

// Drain flushes pending publishes and in-flight handlers, then closes.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

type subscription struct {
	sub *nats.Subscription
}

func (s subscription) Unsubscribe() error {
	if !s.sub.IsValid() {
		return nil
	}
	return s.sub.Unsubscribe()
}

func (s subscription) Subject() string {
	return s.sub.Subject
}

func toMessage(msg *nats.Msg) *messaging.Message {
	m := &messaging.Message{
		Subject:    msg.Subject,
		Data:       msg.Data,
		ReceivedAt: time.Now(),
	}
	if len(msg.Header) > 0 {
		m.Headers = make(map[string]string, len(msg.Header))
		for k := range msg.Header {
			m.Headers[k] = msg.Header.Get(k)
		}
	}
	return m
}
