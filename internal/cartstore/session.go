package cartstore

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"
)

// SessionStore is the server-side cart slot. The synchronizer only ever
// writes it; it is a freshness mirror of the cookie, never a read source.
type SessionStore interface {
	// Put stores the encoded cart under the session ID, refreshing the idle
	// expiry window.
	Put(ctx context.Context, sessionID, encoded string) error
}

// RedisStore implements SessionStore on Redis with a per-write TTL, so the
// slot expires after the idle timeout rather than at a fixed deadline.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore mirroring carts with the given idle TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Put writes the encoded cart, resetting the idle expiry.
func (s *RedisStore) Put(ctx context.Context, sessionID, encoded string) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), encoded, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Get returns the mirrored cart for debugging and tests. The request path
// never calls it: the cookie is the sole read-side source of truth.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errors.Wrap(err, "redis get")
	}
	return val, nil
}

// Ping reports whether the Redis backend is reachable. Used by health
// checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func sessionKey(sessionID string) string {
	return "cart:" + sessionID
}
