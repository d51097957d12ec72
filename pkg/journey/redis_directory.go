package journey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "journey:session:"

// SessionKey returns the Redis key holding session id.
func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// RedisDirectory stores sessions as JSON strings in Redis so several server
// instances can share them. Each operation is a single-key command.
type RedisDirectory struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisDirectory creates a Redis-backed directory. A non-positive ttl
// uses DefaultSessionTTL.
func NewRedisDirectory(client redis.UniversalClient, ttl time.Duration) *RedisDirectory {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisDirectory{client: client, ttl: ttl}
}

// Put implements Directory.
func (d *RedisDirectory) Put(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := d.client.Set(ctx, SessionKey(s.ID), payload, d.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", s.ID, err)
	}
	return nil
}

// Get implements Directory.
func (d *RedisDirectory) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := d.client.Get(ctx, SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// Delete implements Directory.
func (d *RedisDirectory) Delete(ctx context.Context, id string) error {
	n, err := d.client.Del(ctx, SessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
