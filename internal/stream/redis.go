package stream

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is used when the URL carries no channel parameter.
const DefaultRedisChannel = "workflow-events"

// RedisTransport subscribes to a Redis pub/sub channel. URLs take the form
// redis://host:port/db?channel=<name>.
type RedisTransport struct{}

// Open connects, confirms the subscription and reads messages in the background.
func (t *RedisTransport) Open(ctx context.Context, rawURL string, h Handlers) (io.Closer, error) {
	opts, channel, err := ParseRedisURL(rawURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		_ = client.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	go func() {
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if h.OnError != nil {
					h.OnError(err)
				}
				return
			}
			if h.OnMessage != nil {
				h.OnMessage([]byte(msg.Payload))
			}
		}
	}()

	return closerFunc(func() error {
		cancel()
		_ = pubsub.Close()
		return client.Close()
	}), nil
}

// ParseRedisURL splits a redis:// stream URL into client options and the
// pub/sub channel. The channel parameter is stripped before redis.ParseURL,
// which rejects unknown parameters.
func ParseRedisURL(rawURL string) (*redis.Options, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid redis url %q: %w", rawURL, err)
	}

	q := u.Query()
	channel := q.Get("channel")
	if channel == "" {
		channel = DefaultRedisChannel
	}
	q.Del("channel")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, "", fmt.Errorf("invalid redis url %q: %w", rawURL, err)
	}
	return opts, channel, nil
}
