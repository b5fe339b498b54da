package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/config"
)

const rateLimitWindow = time.Minute

// RateLimiter throttles API traffic per firm over fixed one-minute
// windows. Each firm counts against its own window-stamped key, so one
// tenant's burst never starves another; the burst allowance sits on top
// of the steady per-minute rate.
type RateLimiter struct {
	client *Client
	cfg    config.RateLimitConfig
}

// NewRateLimiter creates a rate limiter with the configured per-firm rate
func NewRateLimiter(client *Client, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, cfg: cfg}
}

func firmKey(firmID uuid.UUID, windowStart time.Time) string {
	return fmt.Sprintf("ratelimit:firm:%s:%d", firmID, windowStart.Unix())
}

func (r *RateLimiter) limit() int64 {
	return int64(r.cfg.RequestsPerMinute + r.cfg.Burst)
}

// Allow counts one request against the firm's current window. Returns
// whether the request may proceed, how many requests remain in the
// window, and when the window resets.
func (r *RateLimiter) Allow(ctx context.Context, firmID uuid.UUID) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rateLimitWindow)
	key := firmKey(firmID, windowStart)

	pipe := r.client.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	// Window-stamped keys are never reused; expire them shortly after
	// the window closes.
	pipe.Expire(ctx, key, 2*rateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to count request for firm %s: %w", firmID, err)
	}

	count := incr.Val()
	remaining := r.limit() - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= r.limit(), int(remaining), windowStart.Add(rateLimitWindow), nil
}
