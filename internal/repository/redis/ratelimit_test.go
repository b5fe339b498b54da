package redis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lexara-com/engage-sub006/internal/config"
)

func TestFirmKey_ScopedPerFirmAndWindow(t *testing.T) {
	firmA := uuid.New()
	firmB := uuid.New()
	window := time.Now().Truncate(rateLimitWindow)

	assert.NotEqual(t, firmKey(firmA, window), firmKey(firmB, window),
		"two firms must never share a counter")
	assert.NotEqual(t, firmKey(firmA, window), firmKey(firmA, window.Add(rateLimitWindow)),
		"a new window must start a fresh counter")
	assert.Equal(t, firmKey(firmA, window), firmKey(firmA, window),
		"the same firm and window must hit the same counter")
}

func TestRateLimiter_LimitIncludesBurst(t *testing.T) {
	r := NewRateLimiter(nil, config.RateLimitConfig{RequestsPerMinute: 60, Burst: 10})
	assert.Equal(t, int64(70), r.limit())
}
