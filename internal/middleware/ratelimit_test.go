package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A disabled limiter must short-circuit before any Redis call, so an
// unreachable client is fine here.
func throttledApp(limit int, window time.Duration) *fiber.App {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	app := fiber.New()
	app.Use(RateLimit(rdb, limit, window))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app
}

func TestRateLimitDisabled(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		window time.Duration
	}{
		{"zero limit", 0, time.Minute},
		{"negative limit", -1, time.Minute},
		{"zero window", 120, 0},
		{"negative window", 120, -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := throttledApp(tt.limit, tt.window)
			resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}
