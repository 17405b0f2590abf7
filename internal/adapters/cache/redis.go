package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/courtview/internal/domain/table"
)

// DefaultKeyPrefix namespaces query entries in a shared redis.
const DefaultKeyPrefix = "courtview:query:"

// RedisStore keeps JSON-encoded tables in redis so several dashboard
// instances share one cache.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL sets the entry lifetime; 0 keeps entries until invalidated.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: connect to redis %s: %w", ErrStore, addr, err)
	}
	return NewRedisStore(client, opts...), nil
}

func (s *RedisStore) key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return s.prefix + hex.EncodeToString(sum[:])
}

func (s *RedisStore) Get(ctx context.Context, key string) (table.Table, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return table.Table{}, false, nil
	}
	if err != nil {
		return table.Table{}, false, fmt.Errorf("%w: get: %w", ErrStore, err)
	}
	var t table.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return table.Table{}, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return t, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, t table.Table) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStore, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", ErrStore, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: delete: %w", ErrStore, err)
	}
	return nil
}

// Purge removes every key under the prefix.
func (s *RedisStore) Purge(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: purge: %w", ErrStore, err)
	}
	return nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	keys, err := s.keys(ctx)
	return len(keys), err
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %w", ErrStore, err)
	}
	return keys, nil
}

var _ Store = (*RedisStore)(nil)
