package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/CiroGamboa/bimoi/internal/flow"
)

// RedisStore keeps flow state in Redis as JSON so conversations survive
// process restarts. Locking stays process-local: Telegram delivers webhook
// updates to a single backend, so cross-process locks are not needed.
type RedisStore struct {
	client *redis.Client
	prefix string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr      string
	DB        int
	KeyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Get returns the stored state, or the zero state for an unknown key.
func (s *RedisStore) Get(ctx context.Context, key string) (flow.StepState, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return flow.StepState{}, nil
	}
	if err != nil {
		return flow.StepState{}, fmt.Errorf("redis get session: %w", err)
	}
	var state flow.StepState
	if err := json.Unmarshal(raw, &state); err != nil {
		return flow.StepState{}, fmt.Errorf("decode session: %w", err)
	}
	return state, nil
}

// Put stores the state for key.
func (s *RedisStore) Put(ctx context.Context, key string, state flow.StepState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis put session: %w", err)
	}
	return nil
}

// Lock acquires the per-conversation mutex.
func (s *RedisStore) Lock(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
