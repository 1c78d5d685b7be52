// 包 utils：Postgres/Redis 连接工具，统一环境变量读取与启动期连通性重试
package utils

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"hospital-access/internal/logger"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// BuildPostgresDSNFromEnv：PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE
// 约束：用户名与密码经 url.UserPassword 转义，含 @ / : 的密码不会破坏 DSN
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(env("PG_USER", "postgres")),
		Host:     net.JoinHostPort(env("PG_HOST", "localhost"), env("PG_PORT", "5432")),
		Path:     "/" + env("PG_DB", "hospital_access"),
		RawQuery: url.Values{"sslmode": {env("PG_SSLMODE", "disable")}}.Encode(),
	}
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(env("PG_USER", "postgres"), pass)
	}
	return u.String()
}

// OpenPostgresFromEnv：打开连接池；写入为批处理，默认池比服务场景小
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	maxOpen, maxIdle := 8, 4
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_OPEN_CONNS")); e == nil && n > 0 {
		maxOpen = n
	}
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_IDLE_CONNS")); e == nil && n >= 0 {
		maxIdle = n
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}

// Pinger：*sql.DB 与 Redis 适配器共同满足
type Pinger interface {
	PingContext(ctx context.Context) error
}

// 文档注释：启动期连通性检查
// 背景：容器编排下数据库常晚于本进程就绪；按指数退避重试，总时长受 maxElapsed 限制。
func PingWithRetry(ctx context.Context, name string, p Pinger, maxElapsed time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = maxElapsed
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := p.PingContext(ctx)
		if err != nil {
			logger.L().Debug("ping_retry", "target", name, "attempt", attempt, "err", err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}
