package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

const publicEventsKey = "events:public"

// PublicEvents caches the approved listing.
type PublicEvents interface {
	Get(ctx context.Context) ([]domain.Event, bool, error)
	Set(ctx context.Context, events []domain.Event) error
	Invalidate(ctx context.Context) error
}

type redisPublicEvents struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisPublicEvents stores the listing as JSON under a single key.
func NewRedisPublicEvents(client redis.Cmdable, ttl time.Duration) PublicEvents {
	return &redisPublicEvents{client: client, ttl: ttl}
}

func (c *redisPublicEvents) Get(ctx context.Context) ([]domain.Event, bool, error) {
	raw, err := c.client.Get(ctx, publicEventsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var events []domain.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, false, err
	}
	return events, true, nil
}

func (c *redisPublicEvents) Set(ctx context.Context, events []domain.Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, publicEventsKey, raw, c.ttl).Err()
}

func (c *redisPublicEvents) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, publicEventsKey).Err()
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context) ([]domain.Event, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, []domain.Event) error         { return nil }
func (Noop) Invalidate(context.Context) error                  { return nil }
