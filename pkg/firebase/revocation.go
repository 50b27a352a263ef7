package firebase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RevocationStore 记录每个 uid 的令牌生效起点，早于该时间签发的令牌视为已吊销
type RevocationStore interface {
	ValidSince(ctx context.Context, uid string) (time.Time, error)
	Revoke(ctx context.Context, uid string, at time.Time) error
}

const revocationKeyPrefix = "firebase:valid_since:"

type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) ValidSince(ctx context.Context, uid string) (time.Time, error) {
	v, err := s.client.Get(ctx, revocationKeyPrefix+uid).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, uid string, at time.Time) error {
	return s.client.Set(ctx, revocationKeyPrefix+uid, at.Unix(), 0).Err()
}

// MemoryRevocationStore is used when Redis is disabled.
type MemoryRevocationStore struct {
	mu    sync.RWMutex
	since map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{since: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) ValidSince(_ context.Context, uid string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.since[uid], nil
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, uid string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since[uid] = at.Truncate(time.Second)
	return nil
}
