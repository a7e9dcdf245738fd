package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit applies a fixed-window limit of perMin requests per client
// IP per minute, tracked in Redis so the limit holds across replicas.
// Redis errors fail open: a broken limiter must not take the API down.
// A nil client or non-positive limit disables the middleware.
func RateLimit(rdb *redis.Client, perMin int) echo.MiddlewareFunc {
	if rdb == nil || perMin <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			window := time.Now().UTC().Unix() / 60
			key := fmt.Sprintf("ratelimit:%s:%d", ip, window)
			ctx := c.Request().Context()

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, time.Minute).Err()
			}
			if count > int64(perMin) {
				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
