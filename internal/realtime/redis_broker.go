package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBroker shares change events between service instances over a redis
// pub/sub channel.
type RedisBroker struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisBroker(client *redis.Client, channel string, log zerolog.Logger) *RedisBroker {
	return &RedisBroker{
		client:  client,
		channel: channel,
		log:     log.With().Str("component", "redis_broker").Logger(),
	}
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan Event, func()) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	out := make(chan Event, subscriberBuffer)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn().Err(err).Msg("dropping malformed change event")
				continue
			}
			select {
			case out <- event:
			default:
			}
		}
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				b.log.Warn().Err(err).Msg("failed to close subscription")
			}
		})
	}
	return out, release
}
