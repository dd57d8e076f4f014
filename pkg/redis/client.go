package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sitelog/pkg/config"
)

// NewRedisClient 创建客户端并 ping；ping 失败只记警告，去重逻辑在 Redis 不可用时放行
func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis ping failed", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("Redis connection established", zap.String("addr", cfg.Addr))
	}
	return rdb
}

// Key 统一的 key 前缀
func Key(parts ...interface{}) string {
	key := "sitelog"
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}
