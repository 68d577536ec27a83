package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-registration/pkg/response"
)

// KeyFunc builds the redis counter key for a request.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true for requests that skip the limit.
type AllowFunc func(*gin.Context) bool

// ipFromCtx returns the address set by RealIP, or gin's ClientIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP per route
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + routeOf(c) + ":ip:" + ipFromCtx(c)
	}
}

// INCR, starting the window on the first hit
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// window is one fixed-window counter read.
type window struct {
	count int
	reset int // seconds until the window closes
}

func hit(ctx context.Context, rdb *redis.Client, key string, size time.Duration) (window, error) {
	n, err := incrExpireScript.Run(ctx, rdb, []string{key}, size.Milliseconds()).Int()
	if err != nil {
		return window{}, err
	}
	w := window{count: n}
	if ttl, err := rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
		w.reset = int((ttl + time.Second - 1) / time.Second)
	}
	return w, nil
}

// RateLimit allows max requests per key within size. It sets the
// X-RateLimit-* headers, answers 429 once the budget is spent and fails open
// when redis is unavailable. A nil client or non-positive max disables it.
func RateLimit(rdb *redis.Client, max int, size time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || size <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		w, err := hit(c.Request.Context(), rdb, keyFn(c), size)
		if err != nil {
			c.Next()
			return
		}

		remaining := max - w.count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(w.reset))

		if w.count > max {
			if w.reset > 0 {
				c.Header("Retry-After", strconv.Itoa(w.reset))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
