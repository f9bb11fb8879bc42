// Package database opens the Redis connections used for event fan-out.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventClients pairs a command connection with one reserved for SUBSCRIBE,
// which cannot issue other commands once subscribed.
type EventClients struct {
	Publisher  *redis.Client
	Subscriber *redis.Client
}

// Connect opens both clients from redisURL and checks each answers PING
// before ctx expires.
func Connect(ctx context.Context, redisURL string) (*EventClients, error) {
	base, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	clients := &EventClients{
		Publisher:  newNamedClient(base, "webchat-publisher"),
		Subscriber: newNamedClient(base, "webchat-subscriber"),
	}
	for role, c := range map[string]*redis.Client{"publisher": clients.Publisher, "subscriber": clients.Subscriber} {
		if err := c.Ping(ctx).Err(); err != nil {
			clients.Close()
			return nil, fmt.Errorf("connect to redis (%s): %w", role, err)
		}
	}
	return clients, nil
}

func newNamedClient(base *redis.Options, name string) *redis.Client {
	opt := *base
	opt.ClientName = name
	return redis.NewClient(&opt)
}

func (c *EventClients) Close() error {
	return errors.Join(c.Publisher.Close(), c.Subscriber.Close())
}
