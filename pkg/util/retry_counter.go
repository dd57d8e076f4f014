package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RetryCounter 记录消息重试次数，实现 mq.RetryTracker
type RetryCounter struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRetryCounter(rdb *redis.Client, prefix string, ttl time.Duration) *RetryCounter {
	return &RetryCounter{rdb: rdb, prefix: prefix, ttl: ttl}
}

// IncrementAndGet 自增并返回新的计数，第一次自增时设置过期时间
func (r *RetryCounter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	key = r.prefix + key
	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.rdb.Expire(ctx, key, r.ttl)
	}
	return count, nil
}

func (r *RetryCounter) Get(ctx context.Context, key string) (int64, error) {
	count, err := r.rdb.Get(ctx, r.prefix+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func (r *RetryCounter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}
