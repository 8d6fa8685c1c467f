package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BucketPerClient(t *testing.T) {
	rl := NewRateLimiter(2)
	defer rl.Stop()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	a := rl.limiter("10.0.0.1")
	assert.True(t, a.AllowN(now, 1))
	assert.True(t, a.AllowN(now, 1))
	assert.False(t, a.AllowN(now, 1))

	b := rl.limiter("10.0.0.2")
	assert.True(t, b.AllowN(now, 1))

	// one token refills every 30s at two per minute
	assert.True(t, a.AllowN(now.Add(31*time.Second), 1))
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(5)
	defer rl.Stop()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter("idle")
	now = now.Add(limiterTTL + time.Minute)
	rl.limiter("active")
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "idle")
	assert.Contains(t, rl.limiters, "active")
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	defer rl.Stop()
	assert.Nil(t, rl.limiter("anyone"))
}
