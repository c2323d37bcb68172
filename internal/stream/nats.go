package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/telhawk-systems/opsboard/common/messaging"
	natsclient "github.com/telhawk-systems/opsboard/common/messaging/nats"
)

// NATSTransport subscribes to a NATS subject. URLs take the form
// nats://host:port/<subject>; the subject defaults to workflow.events.
//
// The connection never reconnects on its own. A dropped connection is
// reported through Handlers.OnError like any other transport failure.
type NATSTransport struct {
	Logger *slog.Logger
}

// Open connects to the server and subscribes to the subject.
func (t *NATSTransport) Open(ctx context.Context, rawURL string, h Handlers) (io.Closer, error) {
	serverURL, subject, err := parseNATSURL(rawURL)
	if err != nil {
		return nil, err
	}

	cfg := natsclient.DefaultConfig()
	cfg.URL = serverURL
	cfg.Name = "opsboard-stream"
	cfg.NoReconnect = true
	cfg.Logger = t.Logger

	var closing atomic.Bool
	cfg.OnClosed = func(err error) {
		if closing.Load() || h.OnError == nil {
			return
		}
		if err == nil {
			err = fmt.Errorf("nats connection closed")
		}
		h.OnError(err)
	}

	client, err := natsclient.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	_, err = client.Subscribe(subject, func(_ context.Context, msg *messaging.Message) error {
		if h.OnMessage != nil {
			h.OnMessage(msg.Data)
		}
		return nil
	})
	if err == nil {
		err = client.Flush()
	}
	if err != nil {
		closing.Store(true)
		_ = client.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	go func() {
		<-ctx.Done()
		closing.Store(true)
		_ = client.Close()
	}()

	return closerFunc(func() error {
		closing.Store(true)
		return client.Close()
	}), nil
}

// parseNATSURL splits nats://host:port/subject into the server URL and subject.
func parseNATSURL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid nats url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("invalid nats url %q: missing host", rawURL)
	}

	subject := strings.Trim(u.Path, "/")
	subject = strings.ReplaceAll(subject, "/", ".")
	if subject == "" {
		subject = messaging.SubjectWorkflowEvents
	}

	server := url.URL{Scheme: u.Scheme, Host: u.Host, User: u.User}
	return server.String(), subject, nil
}
