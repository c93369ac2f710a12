package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore keeps each session in a hash under session:{id} with a sliding
// TTL, so abandoned sessions expire on their own.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	sk := sessionKey(sid)

	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, sk, key, value)
	pipe.Expire(ctx, sk, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session key: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	val, err := s.rdb.HGet(ctx, sessionKey(sid), key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Erase(ctx context.Context, sid, key string) error {
	if err := s.rdb.HDel(ctx, sessionKey(sid), key).Err(); err != nil {
		return fmt.Errorf("failed to erase session key: %w", err)
	}
	return nil
}

// NewRedisClient connects to Redis with the circuit-breaker hook installed
// and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	rdb.AddHook(NewBreakerHook("sessions"))

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}
