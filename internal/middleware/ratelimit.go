package middleware

import (
	"net/http"
	"sync"
	"time"

	"hospital-access/internal/metrics"
)

// 文档注释：令牌桶限流（每秒）
// 背景：GeoJSON 产物体积大，突发抓取会占满出口带宽；按配置开关与速率。
// 约束：不排队，超限直接返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit：enabled 为 false 时原样返回 next
func RateLimit(next http.Handler, enabled bool, qps int) http.Handler {
	if !enabled || qps <= 0 {
		return next
	}
	tb := NewTokenBucket(qps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow() {
			metrics.RateLimitedTotal.Inc()
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
