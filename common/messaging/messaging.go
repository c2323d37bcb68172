// Package messaging abstracts the broker behind the nats:// event stream and
// the mock backend's event fan-out.
package messaging

import (
	"context"
	"time"
)

// Message is one payload received on a subject.
type Message struct {
	Subject string
	Data    []byte

	// Headers carries broker headers, if any.
	Headers map[string]string

	// ReceivedAt is stamped on arrival; core NATS carries no timestamp.
	ReceivedAt time.Time
}

// MessageHandler processes a received message. A returned error is logged
// and does not stop the subscription.
type MessageHandler func(ctx context.Context, msg *Message) error

// Subscription is a live subject subscription.
type Subscription interface {
	Unsubscribe() error
	Subject() string
}

// Publisher publishes raw payloads to subjects.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Subscriber fans every message on a subject out to a handler.
type Subscriber interface {
	Subscribe(subject string, handler MessageHandler) (Subscription, error)
	Close() error
}

// Client is a connected broker client.
type Client interface {
	Publisher
	Subscriber

	// Drain flushes pending publishes and closes the connection.
	Drain() error
}
