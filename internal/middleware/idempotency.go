package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const correlationHeader = "X-Correlation-ID"

// Idempotency replays cached responses for retried uploads. A retry of
// AttachImage after a late failure would otherwise store a second asset
// under a fresh key, so callers retrying send the same X-Correlation-ID and
// get the first successful response back instead of a duplicate upload.
func Idempotency(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		correlationID := c.Get(correlationHeader)
		if correlationID == "" {
			// No correlation ID = no idempotency guarantee
			return c.Next()
		}

		key := "idempotency:upload:" + correlationID
		ctx := context.Background()

		cached, err := redisClient.Get(ctx, key).Bytes()
		if err == nil && len(cached) > 0 {
			c.Set("X-Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}

		if err := c.Next(); err != nil {
			return err
		}

		// Only successful responses are replayable; failures must be
		// retried for real.
		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			body := c.Response().Body()
			if len(body) > 0 {
				buf := make([]byte, len(body))
				copy(buf, body)
				go func() {
					bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					redisClient.Set(bgCtx, key, buf, ttl)
				}()
			}
		}

		return nil
	}
}
