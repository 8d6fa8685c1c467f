package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

const limiterTTL = 15 * time.Minute

// RateLimiter throttles requests per client IP with a token bucket per client.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	perMinute   int
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with an equal burst. A
// non-positive limit disables throttling. Call Stop to end the sweeper goroutine.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		limiters:    make(map[string]*limiterEntry),
		perMinute:   perMinute,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if perMinute > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Handler rejects clients that have used up their budget with 429.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limiter := rl.limiter(c.IP())
		if limiter == nil {
			return c.Next()
		}
		if !limiter.AllowN(rl.now(), 1) {
			retry := time.Minute / time.Duration(rl.perMinute)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retry.Seconds())+1))
			return apperrors.NewTooManyRequests("Too many requests, please try again later")
		}
		return c.Next()
	}
}

// Stop ends the background sweeper.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if rl.perMinute <= 0 {
		return nil
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if entry, ok := rl.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	interval := time.Minute / time.Duration(rl.perMinute)
	limiter := rate.NewLimiter(rate.Every(interval), rl.perMinute)
	rl.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.limiters, key)
		}
	}
}
