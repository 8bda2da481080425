// file: internals/middlewares/rate_limiter_middleware.go
package middlewares

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"dancestudio_backend/internals/configs"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

// GlobalRateLimiter applies to every endpoint.
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(configs.RateLimitPerMinute(), "Too many requests, try again later")
}

// BulkWriteRateLimiter guards the batch endpoints (attendance bulk, payroll runs).
func BulkWriteRateLimiter() fiber.Handler {
	return newLimiter(configs.BulkRateLimitPerMinute(), "Too many bulk writes, try again in a minute")
}

func newLimiter(max int, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   1 * time.Minute,
		KeyGenerator: callerKey,
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// callerKey buckets authenticated requests per user and the rest per IP.
func callerKey(c *fiber.Ctx) string {
	if caller, err := helperAuth.CallerFromCtx(c); err == nil {
		return fmt.Sprintf("user:%s", caller.UserID)
	}
	return "ip:" + c.IP()
}
