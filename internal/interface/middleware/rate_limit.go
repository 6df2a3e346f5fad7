package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/interview-tracker/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(RealIPKey); ip != "" {
		return ip
	}
	if ip := c.RemoteIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP and route, so login and register have separate budgets.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits by authenticated interviewer; it must run after Auth.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(UserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// fixedWindow increments the key and arms its expiry in one round trip.
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// AllowFunc reports whether a request skips the limiter entirely.
type AllowFunc func(*gin.Context) bool

// limiter counts hits per key in fixed windows stored in Redis.
type limiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

// hit records one request and returns the window's count and time left.
func (l limiter) hit(ctx context.Context, key string) (int, time.Duration, error) {
	res, err := fixedWindow.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit: unexpected reply %v", res)
	}
	ttl := time.Duration(toInt(res[1])) * time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}
	return toInt(res[0]), ttl, nil
}

// RateLimit allows max requests per window for each key. It fails open:
// without a client, or when Redis errors, requests pass unthrottled.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	l := limiter{rdb: rdb, max: max, window: window}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, ttl, err := l.hit(c.Request.Context(), keyFn(c))
		if err != nil {
			c.Next()
			return
		}
		resetSec := int((ttl + time.Second - 1) / time.Second)

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(maxInt(max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			c.Header("Retry-After", strconv.Itoa(resetSec))
			response.Error(c, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}
		c.Next()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
