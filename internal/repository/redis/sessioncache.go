package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

const (
	sessionCachePrefix = "session:"
	sessionCacheTTL    = 5 * time.Minute
)

// SessionCache is a read-through cache in front of the session store.
// Entries are refreshed after every successful persistence write, so a hit
// always reflects the last committed state.
type SessionCache struct {
	client *Client
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *Client) *SessionCache {
	return &SessionCache{client: client}
}

func sessionKey(firmID, sessionID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", sessionCachePrefix, firmID, sessionID)
}

// Get retrieves a cached session
func (c *SessionCache) Get(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	data, err := c.client.rdb.Get(ctx, sessionKey(firmID, sessionID)).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Set caches a session after a committed write
func (c *SessionCache) Set(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.client.rdb.Set(ctx, sessionKey(session.FirmID, session.SessionID), data, sessionCacheTTL).Err()
}

// Invalidate removes a cached session
func (c *SessionCache) Invalidate(ctx context.Context, firmID, sessionID uuid.UUID) error {
	return c.client.rdb.Del(ctx, sessionKey(firmID, sessionID)).Err()
}
