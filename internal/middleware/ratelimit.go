package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/padelhq/club-reservation/internal/config"
)

// NewRateLimit returns a fixed-window limiter backed by Redis.  Requests
// are counted per client (member ID when authenticated, client IP
// otherwise) and route; counter N+1 in a window gets a 429.  A Redis
// error fails open: throttling is protection, not policy.
func NewRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			window := time.Now().Unix() / int64(cfg.Window/time.Second)
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, clientID(c), c.Path(), window)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := int(cfg.Window / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}

// clientID identifies the caller for rate limiting: the authenticated
// member ID when present, the remote IP otherwise.
func clientID(c echo.Context) string {
	if v := c.Get("member_id"); v != nil {
		return fmt.Sprint(v)
	}
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}
