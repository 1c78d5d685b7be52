package utils

import (
	"context"
	"os"
	"strconv"

	"hospital-access/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromEnv：REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB
// 约束：REDIS_DB 解析失败时回退到 0
func OpenRedisFromEnv() *redis.Client {
	addr := env("REDIS_HOST", "127.0.0.1") + ":" + env("REDIS_PORT", "6379")
	db := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && n >= 0 {
		db = n
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}

// RedisPinger：把 *redis.Client 适配为 Pinger
type RedisPinger struct{ C *redis.Client }

func (r RedisPinger) PingContext(ctx context.Context) error { return r.C.Ping(ctx).Err() }
