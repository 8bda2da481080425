// file: internals/middlewares/recovery_middleware.go
package middlewares

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	logsvc "dancestudio_backend/internals/services/logger"
)

// RecoveryMiddleware turns a panic into a 500 and reports it.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logsvc.Error("Panic", fmt.Errorf("%v", e), map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
			})
		},
	})
}
