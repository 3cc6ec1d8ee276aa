// Package ratelimiter はRedisの固定ウィンドウでリクエスト頻度を制限するginミドルウェアを提供します。
package ratelimiter

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"social_backend/internal/platform/http/response"
)

// MsgTooManyRequests is returned when a client exceeds its window.
const MsgTooManyRequests = "Too many requests, please try again later"

// incrExpireScript increments the counter and starts the window on the first hit.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// KeyFunc builds the counter key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByIPAndPath limits each client IP on each route separately.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return "rl:path:" + path + ":ip:" + clientIP(c)
	}
}

// KeyByUser limits each authenticated user, falling back to the client IP.
func KeyByUser(userKey string) KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(userKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + clientIP(c)
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimiter counts requests per key in Redis.
type RateLimiter struct {
	rdb    redis.Scripter
	limit  int           // ウィンドウあたりの上限
	window time.Duration // どの単位でリセットするか
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
func NewRateLimiter(rdb redis.Scripter, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow increments key and reports whether it is still within the limit,
// together with the remaining count.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	n, err := incrExpireScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Int()
	if err != nil {
		return true, rl.limit, err
	}
	remaining := rl.limit - n
	if remaining < 0 {
		remaining = 0
	}
	return n <= rl.limit, remaining, nil
}

// Middleware rejects requests over the limit with 429.
// Redis failures let the request through.
func (rl *RateLimiter) Middleware(keyFn KeyFunc) gin.HandlerFunc {
	if rl == nil || rl.rdb == nil || rl.limit <= 0 || rl.window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		key := keyFn(c)
		ok, remaining, err := rl.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			slog.Warn("rate limit exceeded", "key", key, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{Error: MsgTooManyRequests})
			return
		}
		c.Next()
	}
}
