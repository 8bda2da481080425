package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkWriteRateLimiter_PerCaller(t *testing.T) {
	t.Setenv("BULK_RATE_LIMIT_PER_MINUTE", "2")

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if uid := c.Get("X-Test-User"); uid != "" {
			c.Locals("user_id", uid)
		}
		return c.Next()
	})
	app.Post("/bulk", BulkWriteRateLimiter(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	hit := func(user string) int {
		req := httptest.NewRequest("POST", "/bulk", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	alice := "7d4c7a1e-6a52-4a3b-9a39-0a7d1c5e2f01"
	bob := "0b6c0e52-2f9d-4c8e-8a62-6c7f93f1a4d2"

	assert.Equal(t, fiber.StatusNoContent, hit(alice))
	assert.Equal(t, fiber.StatusNoContent, hit(alice))
	assert.Equal(t, fiber.StatusTooManyRequests, hit(alice))
	assert.Equal(t, fiber.StatusNoContent, hit(bob))

	// anonymous requests share the IP bucket
	assert.Equal(t, fiber.StatusNoContent, hit(""))
	assert.Equal(t, fiber.StatusNoContent, hit(""))
	assert.Equal(t, fiber.StatusTooManyRequests, hit(""))
}
