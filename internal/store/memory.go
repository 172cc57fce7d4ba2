package store

import (
	"context"
	"sync"
	"time"

	"github.com/ashureev/assessment-relay/internal/domain"
)

// MemoryStore is an in-process ResultStore.
//
// Every Put and Get sweeps expired entries under the same lock that guards the
// map, so an entry written after the expiry decision is never removed by it.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*domain.StoredResult
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory(ttl time.Duration, opts ...Option) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := buildOptions(opts)
	return &MemoryStore{
		entries: make(map[string]*domain.StoredResult),
		ttl:     ttl,
		now:     o.now,
	}
}

// Put stores a copy of r, replacing any previous entry for the same email.
func (s *MemoryStore) Put(_ context.Context, r *domain.StoredResult) error {
	now := s.now()
	rec, err := prepare(r, now)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.entries[rec.Email] = rec
	return nil
}

// Get returns a copy of the live entry for email.
func (s *MemoryStore) Get(_ context.Context, email string) (*domain.StoredResult, error) {
	key := domain.NormalizeEmail(email)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)

	rec, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Sweep removes every expired entry.
func (s *MemoryStore) Sweep(_ context.Context) (int64, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now), nil
}

func (s *MemoryStore) sweepLocked(now time.Time) int64 {
	var removed int64
	for email, rec := range s.entries {
		if rec.Expired(now, s.ttl) {
			delete(s.entries, email)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TTL returns the expiry window.
func (s *MemoryStore) TTL() time.Duration { return s.ttl }

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close drops all entries.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	return nil
}
