package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"visapoint/models"
	"visapoint/services/wizard"
)

var (
	// ErrSessionNotFound is returned for unknown or expired wizard sessions.
	ErrSessionNotFound = errors.New("wizard session not found or expired")
	// ErrPendingNotFound is returned when no pending payment matches an order id.
	ErrPendingNotFound = errors.New("pending payment not found")
)

// SessionStore persists wizard state between requests.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*wizard.State, error)
	Save(ctx context.Context, s wizard.State) error
	Delete(ctx context.Context, sessionID string) error
}

// PendingStore tracks payment attempts that have a gateway payment but no
// final status yet.
type PendingStore interface {
	Put(ctx context.Context, p models.PendingPayment) error
	Get(ctx context.Context, orderID string) (*models.PendingPayment, error)
	Remove(ctx context.Context, orderID string) error
	List(ctx context.Context) ([]models.PendingPayment, error)
}

const (
	sessionKeyPrefix = "wizard:"
	pendingKeyPrefix = "pendingPayment:"
	pendingSetKey    = "pendingPayments"
)

// RedisSessionStore keeps sessions as JSON with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) Load(ctx context.Context, sessionID string) (*wizard.State, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}
	var s wizard.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	r.client.Expire(ctx, sessionKeyPrefix+sessionID, r.ttl)
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s wizard.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.SessionID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store wizard session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// RedisPendingStore keeps one key per order plus an index set so the
// reconcile job can enumerate them.
type RedisPendingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPendingStore(client *redis.Client, ttl time.Duration) *RedisPendingStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPendingStore{client: client, ttl: ttl}
}

func (r *RedisPendingStore) Put(ctx context.Context, p models.PendingPayment) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, pendingKeyPrefix+p.OrderID, raw, r.ttl)
		pipe.SAdd(ctx, pendingSetKey, p.OrderID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store pending payment: %w", err)
	}
	return nil
}

func (r *RedisPendingStore) Get(ctx context.Context, orderID string) (*models.PendingPayment, error) {
	raw, err := r.client.Get(ctx, pendingKeyPrefix+orderID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending payment: %w", err)
	}
	var p models.PendingPayment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode pending payment: %w", err)
	}
	return &p, nil
}

func (r *RedisPendingStore) Remove(ctx context.Context, orderID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, pendingKeyPrefix+orderID)
		pipe.SRem(ctx, pendingSetKey, orderID)
		return nil
	})
	return err
}

// List returns every live record. Index entries whose key expired are pruned.
func (r *RedisPendingStore) List(ctx context.Context) ([]models.PendingPayment, error) {
	ids, err := r.client.SMembers(ctx, pendingSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	out := make([]models.PendingPayment, 0, len(ids))
	for _, id := range ids {
		p, err := r.Get(ctx, id)
		if errors.Is(err, ErrPendingNotFound) {
			r.client.SRem(ctx, pendingSetKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// MemoryStore implements SessionStore and PendingStore in process memory. It
// backs STORE=memory and the tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	pending  map[string]models.PendingPayment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string][]byte{},
		pending:  map[string]models.PendingPayment{},
	}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*wizard.State, error) {
	m.mu.Lock()
	raw, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Round-trip through JSON so callers never share maps with the store.
	var s wizard.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s wizard.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.SessionID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Put(_ context.Context, p models.PendingPayment) error {
	m.mu.Lock()
	m.pending[p.OrderID] = p
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, orderID string) (*models.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[orderID]
	if !ok {
		return nil, ErrPendingNotFound
	}
	return &p, nil
}

func (m *MemoryStore) Remove(_ context.Context, orderID string) error {
	m.mu.Lock()
	delete(m.pending, orderID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]models.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PendingPayment, 0, len(m.pending))
	for _, p := range m.pending {
		out = append(out, p)
	}
	return out, nil
}
