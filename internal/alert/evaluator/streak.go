package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
)

// StreakStore tracks consecutive-breach counters keyed per (rule, building)
// pair. Incr and Reset must be atomic per key relative to concurrent
// evaluations of the same pair.
type StreakStore interface {
	// Incr bumps the streak and returns the new count.
	Incr(ctx context.Context, key string) (int, error)
	// Reset clears the streak back to zero.
	Reset(ctx context.Context, key string) error
}

func ruleStreakKey(ruleID, buildingID snowflake.ID) string {
	return fmt.Sprintf("streak:rule:%s:%s", ruleID, buildingID)
}

type memoryStreakStore struct {
	mu      sync.Mutex
	streaks map[string]int
}

// NewMemoryStreakStore returns an in-process streak store. Suitable for a
// single-instance deployment; multi-instance setups use the redis store so
// streaks survive restarts and shards agree.
func NewMemoryStreakStore() StreakStore {
	return &memoryStreakStore{streaks: make(map[string]int)}
}

func (s *memoryStreakStore) Incr(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks[key]++
	return s.streaks[key], nil
}

func (s *memoryStreakStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streaks, key)
	return nil
}

type redisStreakStore struct {
	client *redis.Client
}

// NewRedisStreakStore returns a redis-backed streak store using INCR/DEL,
// both atomic on the server side.
func NewRedisStreakStore(client *redis.Client) StreakStore {
	return &redisStreakStore{client: client}
}

func (s *redisStreakStore) Incr(ctx context.Context, key string) (int, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *redisStreakStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
