package middleware

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig config for the Redis-based per-client limiter.
type RateLimitConfig struct {
	Redis          *redis.Client
	Limit          int                // requests per window; <= 0 disables
	Window         time.Duration      // default 1m
	KeyPrefix      string             // e.g. "rl:contact:"
	RetryAfterHint bool               // set Retry-After header when limited
	OnLimited      func(echo.Context) // optional hook, e.g. metrics
	Now            func() time.Time   // test clock
}

// RateLimitMiddleware applies a fixed-window limit keyed by c.RealIP(), so the
// echo IPExtractor decides which headers are trusted.
// Missing Redis or a Redis error lets the request through.
func RateLimitMiddleware(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl:ip:"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Limit <= 0 || cfg.Redis == nil {
				// no limit configured or redis missing (dev): allow
				return next(c)
			}

			ip := c.RealIP()

			// fixed-window key: rl:contact:{ip}:{window_start_unix}
			now := cfg.Now()
			start := now.Truncate(cfg.Window)
			key := cfg.KeyPrefix + ip + ":" + strconv.FormatInt(start.Unix(), 10)

			ctx := c.Request().Context()
			pipe := cfg.Redis.Pipeline()
			cnt := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, cfg.Window*2)
			if _, err := pipe.Exec(ctx); err != nil {
				return next(c)
			}

			if cnt.Val() > int64(cfg.Limit) {
				if cfg.RetryAfterHint {
					remain := start.Add(cfg.Window).Sub(now)
					secs := int((remain + time.Second - 1) / time.Second)
					if secs > 0 {
						c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
					}
				}
				if cfg.OnLimited != nil {
					cfg.OnLimited(c)
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests. Please try again later."})
			}
			return next(c)
		}
	}
}
