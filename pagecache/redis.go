package pagecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pagecache:"

// RedisStore keeps pages in Redis so that the cache survives restarts and
// is shared between instances. Expiry is native to Redis.
type RedisStore struct {
	ttl    time.Duration
	client *redis.Client
}

func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisStore{ttl: ttl, client: redis.NewClient(opts)}, nil
}

func (s *RedisStore) Get(key string) ([]byte, bool) {
	value, err := s.client.Get(context.Background(), redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return value, true
}

func (s *RedisStore) Set(key string, value []byte) {
	s.client.Set(context.Background(), redisKeyPrefix+key, value, s.ttl)
}

func (s *RedisStore) Clear() {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		s.client.Del(ctx, iter.Val())
	}
}
