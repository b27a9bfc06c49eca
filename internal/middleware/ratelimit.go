package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit throttles requests per client IP using a fixed window counter
// in Redis. If Redis is unreachable the request passes through: throttling
// is protective, not load-bearing.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// A zero window would divide by zero below
		if limit <= 0 || window <= 0 {
			return c.Next()
		}

		now := time.Now()
		bucket := now.Unix() / int64(window.Seconds())
		key := fmt.Sprintf("rl:ip:%s:%d", c.IP(), bucket)

		ctx := c.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window+time.Second)
		}

		windowEnd := (bucket + 1) * int64(window.Seconds())
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(windowEnd, 10))

		if count > int64(limit) {
			retryAfter := windowEnd - now.Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests",
				"limit":       limit,
				"retry_after": retryAfter,
			})
		}

		c.Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
		return c.Next()
	}
}
