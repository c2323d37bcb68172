package mockbackend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/opsboard/common/messaging"
	natsclient "github.com/telhawk-systems/opsboard/common/messaging/nats"
	"github.com/telhawk-systems/opsboard/internal/stream"
)

// Publisher fans generated events out to a broker.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
	Close() error
}

// NATSPublisher publishes events on messaging.SubjectWorkflowEvents.
type NATSPublisher struct {
	client  messaging.Client
	subject string
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	cfg := natsclient.DefaultConfig()
	cfg.URL = url
	cfg.Name = "opsboard-mock"
	cfg.Logger = logger

	client, err := natsclient.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{client: client, subject: messaging.SubjectWorkflowEvents}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, data []byte) error {
	return p.client.Publish(ctx, p.subject, data)
}

// Close drains pending publishes before closing.
func (p *NATSPublisher) Close() error {
	return p.client.Drain()
}

// RedisPublisher publishes events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to the Redis server at rawURL. The channel comes
// from the channel query parameter, as for the redis:// stream transport.
func NewRedisPublisher(ctx context.Context, rawURL string) (*RedisPublisher, error) {
	opts, channel, err := stream.ParseRedisURL(rawURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, data []byte) error {
	return p.client.Publish(ctx, p.channel, data).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
