// Package revocations tracks administratively revoked display identities.
// A revocation only needs to outlive the longest-lived device token, so
// entries expire with the token lifetime.
package revocations

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signage-toolkit/gateway/internal/repository/kvstore"
)

// RedisStore -.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore -.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(displayID string) string {
	return r.prefix + ":revoked:display:" + displayID
}

// Revoke -.
func (r *RedisStore) Revoke(ctx context.Context, displayID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(displayID), 1, ttl).Err(); err != nil {
		return kvstore.Wrap(err)
	}

	return nil
}

// IsRevoked -.
func (r *RedisStore) IsRevoked(ctx context.Context, displayID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(displayID)).Result()
	if err != nil {
		return false, kvstore.Wrap(err)
	}

	return n > 0, nil
}

// MemoryStore is the single-node revocation list.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryStore -.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time)}
}

// Revoke -.
func (m *MemoryStore) Revoke(_ context.Context, displayID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.revoked[displayID] = time.Now().Add(ttl)

	return nil
}

// IsRevoked -.
func (m *MemoryStore) IsRevoked(_ context.Context, displayID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[displayID]
	if !ok {
		return false, nil
	}

	if time.Now().After(until) {
		delete(m.revoked, displayID)

		return false, nil
	}

	return true, nil
}
