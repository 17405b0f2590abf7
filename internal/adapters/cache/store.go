// Package cache memoizes query results by exact statement text.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/okian/courtview/internal/domain/table"
)

// Store holds materialized tables keyed by query text.
type Store interface {
	Get(ctx context.Context, key string) (table.Table, bool, error)
	Set(ctx context.Context, key string, t table.Table) error
	Delete(ctx context.Context, key string) error
	Purge(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// MemoryStore is an in-process LRU with optional expiry.
type MemoryStore struct {
	lru *expirable.LRU[string, table.Table]
}

// NewMemoryStore creates a store holding at most maxEntries tables (0 means
// unbounded) for ttl each (0 means no expiry).
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries < 0 {
		maxEntries = 0
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryStore{lru: expirable.NewLRU[string, table.Table](maxEntries, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (table.Table, bool, error) {
	t, ok := s.lru.Get(key)
	return t, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, t table.Table) error {
	s.lru.Add(key, t)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

func (s *MemoryStore) Purge(_ context.Context) error {
	s.lru.Purge()
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	return s.lru.Len(), nil
}

var _ Store = (*MemoryStore)(nil)
