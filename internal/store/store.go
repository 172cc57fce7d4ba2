// Package store provides the expiring result store and its backends.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/ashureev/assessment-relay/internal/shared"
)

// DefaultTTL is how long a result stays retrievable after it is saved.
const DefaultTTL = 24 * time.Hour

// ResultStore keeps at most one assessment result per email address.
// All implementations must be safe for concurrent use.
type ResultStore interface {
	// Put validates r, stamps its CreatedAt and replaces any entry for r.Email.
	// It returns a *domain.ValidationError when a required field is missing.
	Put(ctx context.Context, r *domain.StoredResult) error

	// Get returns the live entry for email, or nil when it is missing or expired.
	Get(ctx context.Context, email string) (*domain.StoredResult, error)

	// Sweep removes expired entries and returns how many were removed.
	Sweep(ctx context.Context) (int64, error)

	// TTL returns the expiry window the store enforces.
	TTL() time.Duration

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Option configures a store backend.
type Option func(*options)

type options struct {
	now   func() time.Time
	retry shared.RetryPolicy
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, retry: shared.DefaultRetryPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now as the source of CreatedAt and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRetryPolicy sets how SQLite conflicts are retried.
func WithRetryPolicy(p shared.RetryPolicy) Option {
	return func(o *options) {
		o.retry = p
	}
}

// prepare validates r and returns the normalized copy a backend should persist.
func prepare(r *domain.StoredResult, now time.Time) (*domain.StoredResult, error) {
	if r == nil {
		return nil, &domain.ValidationError{Field: "result", Message: "is required"}
	}
	rec := r.Clone()
	rec.Email = domain.NormalizeEmail(rec.Email)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	rec.CreatedAt = now
	return rec, nil
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and parameterizes a backend for Open.
type Config struct {
	Backend  string
	DBPath   string
	RedisURL string
	TTL      time.Duration
}

// Open constructs the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config, opts ...Option) (ResultStore, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(ttl, opts...), nil
	case BackendSQLite:
		return NewSQLite(cfg.DBPath, ttl, opts...)
	case BackendRedis:
		return NewRedisFromURL(ctx, cfg.RedisURL, ttl, opts...)
	default:
		return nil, fmt.Errorf("unknown result store backend %q", cfg.Backend)
	}
}
