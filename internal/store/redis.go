package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "result:"

// RedisStore implements ResultStore on Redis. Expiry is enforced by the
// server through the key TTL; Get also checks CreatedAt against the store clock.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisFromURL connects to the Redis server described by rawURL
// (redis://[user:pass@]host:port/db) and verifies it answers.
func NewRedisFromURL(ctx context.Context, rawURL string, ttl time.Duration, opts ...Option) (*RedisStore, error) {
	if rawURL == "" {
		return nil, errors.New("redis url is required")
	}
	redisOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, ttl, opts...), nil
}

// NewRedis wraps an existing client. The store owns the client after this call.
func NewRedis(client *redis.Client, ttl time.Duration, opts ...Option) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := buildOptions(opts)
	return &RedisStore{client: client, ttl: ttl, now: o.now}
}

func redisKey(email string) string {
	return redisKeyPrefix + domain.NormalizeEmail(email)
}

// Put writes the result with a key TTL equal to the store TTL.
func (s *RedisStore) Put(ctx context.Context, r *domain.StoredResult) error {
	rec, err := prepare(r, s.now())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(rec.Email), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	return nil
}

// Get returns the stored result, or nil when the key is gone or stale.
func (s *RedisStore) Get(ctx context.Context, email string) (*domain.StoredResult, error) {
	payload, err := s.client.Get(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	var rec domain.StoredResult
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if rec.Expired(s.now(), s.ttl) {
		return nil, nil
	}
	return &rec, nil
}

// Sweep is a no-op: Redis expires keys itself.
func (s *RedisStore) Sweep(_ context.Context) (int64, error) {
	return 0, nil
}

// TTL returns the expiry window.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

// Ping verifies the server answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
