package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis pub/sub channels for marketplace domain events.
const (
	EventTutorHired           = "EVENT_TUTOR_HIRED"
	EventApplicationSubmitted = "EVENT_APPLICATION_SUBMITTED"
	EventInvoicePaid          = "EVENT_INVOICE_PAID"
)

// RedisPublisher publishes JSON-encoded events on Redis channels.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher on rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish marshals payload and publishes it on channel.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
