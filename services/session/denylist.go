package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedPrefix = "revoked:"

// RedisDenylist stores revoked hashes with an expiry matching the token's.
type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if err := d.client.Set(ctx, revokedPrefix+tokenHash, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedPrefix+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is a process-local Denylist.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenHash string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenHash] = time.Now().Add(ttl)
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenHash string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.revoked[tokenHash]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(d.revoked, tokenHash)
		return false, nil
	}
	return true, nil
}
