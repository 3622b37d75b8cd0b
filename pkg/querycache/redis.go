package querycache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "backoffice:qc:"

// RedisStore is a Store backed by a shared Redis instance, for deployments
// where several back-office sessions share one cache. Values are stored as
// JSON; invalidation deletes the entry, which forces the next read to
// refetch. The pending-refresh registry is process-local since cancel
// functions cannot cross the process boundary.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration

	mu      sync.Mutex
	pending map[string]func()
}

func NewRedisStore(client *redis.Client, logger *zap.Logger, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{
		client:  client,
		logger:  logger,
		ttl:     ttl,
		pending: make(map[string]func()),
	}
}

func (s *RedisStore) redisKey(key Key) string {
	return redisKeyPrefix + strings.Join(key, ":")
}

func (s *RedisStore) fromRedisKey(raw string) Key {
	return NewKey(strings.Split(strings.TrimPrefix(raw, redisKeyPrefix), ":")...)
}

func (s *RedisStore) Get(key Key) (Value, bool) {
	raw, err := s.client.Get(context.Background(), s.redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache read failed", zap.String("key", key.String()), zap.Error(err))
		}
		return nil, false
	}
	var v Value
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("cache entry corrupt", zap.String("key", key.String()), zap.Error(err))
		return nil, false
	}
	return v, true
}

func (s *RedisStore) Set(key Key, value Value) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache value not serializable", zap.String("key", key.String()), zap.Error(err))
		return
	}
	if err := s.client.Set(context.Background(), s.redisKey(key), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
}

func (s *RedisStore) Entries(prefix Key) []Entry {
	ctx := context.Background()
	var out []Entry
	iter := s.client.Scan(ctx, 0, s.redisKey(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := s.fromRedisKey(iter.Val())
		if v, ok := s.Get(key); ok {
			out = append(out, Entry{Key: key, Value: v})
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("cache scan failed", zap.String("prefix", prefix.String()), zap.Error(err))
	}
	return out
}

func (s *RedisStore) SetMany(prefix Key, update UpdateFunc) {
	for _, e := range s.Entries(prefix) {
		if next := update(e.Key, e.Value); next != nil {
			s.Set(e.Key, next)
		}
	}
}

func (s *RedisStore) Invalidate(keys ...Key) {
	ctx := context.Background()
	for _, key := range keys {
		iter := s.client.Scan(ctx, 0, s.redisKey(key)+"*", 0).Iterator()
		for iter.Next(ctx) {
			if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
				s.logger.Warn("cache invalidation failed", zap.String("key", iter.Val()), zap.Error(err))
			}
		}
	}
}

func (s *RedisStore) TrackPending(key Key, cancel func()) {
	s.mu.Lock()
	prev := s.pending[key.String()]
	s.pending[key.String()] = cancel
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
}

func (s *RedisStore) CancelPending(keys ...Key) {
	s.mu.Lock()
	var cancels []func()
	for _, key := range keys {
		for k, cancel := range s.pending {
			if NewKey(splitKey(k)...).HasPrefix(key) {
				cancels = append(cancels, cancel)
				delete(s.pending, k)
			}
		}
	}
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}
