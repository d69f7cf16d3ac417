package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionTracker owns the idle-logout window. Every authenticated request
// counts as activity and refreshes a per-user key whose TTL is the idle
// window; once the key lapses the next request is rejected and the client
// must log in again. Start and Stop are explicit so nothing leaks across
// logins.
type SessionTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionTracker creates a tracker with the given inactivity window.
func NewSessionTracker(client *redis.Client, ttl time.Duration) *SessionTracker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SessionTracker{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return "portal:session:" + userID
}

// Start opens (or reopens) a session at login.
func (t *SessionTracker) Start(ctx context.Context, userID string) error {
	return t.client.Set(ctx, sessionKey(userID), time.Now().UTC().Format(time.RFC3339), t.ttl).Err()
}

// Touch records activity, refreshing the idle window. It reports false when
// the session has already lapsed.
func (t *SessionTracker) Touch(ctx context.Context, userID string) (bool, error) {
	ok, err := t.client.Expire(ctx, sessionKey(userID), t.ttl).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return ok, nil
}

// Stop closes the session at logout.
func (t *SessionTracker) Stop(ctx context.Context, userID string) error {
	return t.client.Del(ctx, sessionKey(userID)).Err()
}
