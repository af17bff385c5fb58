package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sweep actions that fire at most once per appointment
const (
	DedupActionReminder   = "reminder"
	DedupActionAutoCancel = "auto-cancel"
)

// DedupKeyPrefix namespaces sweep dedup keys in Redis
const DedupKeyPrefix = "sweep:dedup:"

// DedupKey identifies one action for one appointment, e.g. "<id>:reminder".
func DedupKey(appointmentID uuid.UUID, action string) string {
	return fmt.Sprintf("%s:%s", appointmentID, action)
}

// DedupStore remembers which sweep actions already fired.
type DedupStore interface {
	// Claim marks key as consumed. It reports false when key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a later tick can retry the action.
	Release(ctx context.Context, key string) error
}

// MemoryDedupStore keeps claims for the lifetime of the process.
type MemoryDedupStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{keys: make(map[string]struct{})}
}

func (s *MemoryDedupStore) Claim(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *MemoryDedupStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Len is the number of claimed keys
func (s *MemoryDedupStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// RedisDedupStore keeps claims in Redis with a TTL so they survive restarts
// and are shared between instances.
type RedisDedupStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDedupStore(client *redis.Client, ttl time.Duration) *RedisDedupStore {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisDedupStore{client: client, ttl: ttl}
}

func (s *RedisDedupStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, DedupKeyPrefix+key, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim dedup key %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisDedupStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, DedupKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release dedup key %s: %w", key, err)
	}
	return nil
}
