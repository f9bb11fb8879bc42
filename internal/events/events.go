// Package events fans conversation change notifications out to WebSocket
// clients, either in-process or through Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"webchat-backend/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, ev models.ConversationEvent) error
}

// Broadcaster delivers an encoded event to every local client.
type Broadcaster interface {
	Broadcast(data []byte)
}

// LocalBus hands events straight to the in-process hub.
type LocalBus struct {
	sink Broadcaster
}

func NewLocalBus(sink Broadcaster) *LocalBus {
	return &LocalBus{sink: sink}
}

func (b *LocalBus) Publish(ctx context.Context, ev models.ConversationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	b.sink.Broadcast(data)
	return nil
}

// RedisBus publishes on a channel that every server instance subscribes to.
type RedisBus struct {
	publisher  *redis.Client
	subscriber *redis.Client
	channel    string
	log        zerolog.Logger
}

func NewRedisBus(publisher, subscriber *redis.Client, channel string, log zerolog.Logger) *RedisBus {
	return &RedisBus{
		publisher:  publisher,
		subscriber: subscriber,
		channel:    channel,
		log:        log,
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev models.ConversationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.publisher.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Run relays channel messages to sink until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context, sink Broadcaster) {
	pubsub := b.subscriber.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	b.log.Info().Str("channel", b.channel).Msg("subscribed to conversation events")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			sink.Broadcast([]byte(msg.Payload))
		}
	}
}
