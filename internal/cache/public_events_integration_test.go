//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisPublicEvents(t *testing.T) {
	client := startRedis(t)
	c := NewRedisPublicEvents(client, time.Minute)
	ctx := context.Background()

	_, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	events := []domain.Event{{ID: "ev-1", Title: "Pongal", Status: domain.EventStatusApproved}}
	require.NoError(t, c.Set(ctx, events))

	got, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, events, got)

	ttl, err := client.TTL(ctx, publicEventsKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx))
	_, hit, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}
