package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper 基于 SETNX 的去重锁，用于进度预警每日只发一次
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce 首次获取返回 true，重复返回 false
// Redis 不可用时放行，宁可重复预警也不漏报
func (d *Deduper) AcquireOnce(ctx context.Context, key string) bool {
	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("dedup_key", key),
			zap.Error(err),
		)
		return true
	}
	if !ok {
		d.logger.Info("Skipped duplicated event", zap.String("dedup_key", key))
	}
	return ok
}

// Release 处理失败时释放锁，允许下一次重试再次获取
func (d *Deduper) Release(ctx context.Context, key string) {
	if err := d.rdb.Del(ctx, key).Err(); err != nil {
		d.logger.Warn("Redis dedup release failed", zap.String("dedup_key", key), zap.Error(err))
	}
}
