package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pharmawaste/config"
	"pharmawaste/utils"
)

// CronAuth guards the scheduler trigger endpoints with a shared bearer
// secret. External cron services pass it as "Authorization: Bearer <secret>".
func CronAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := config.AppConfig.CronSecret
		if secret == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Scheduler endpoints are disabled", nil)
		}

		auth := c.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
		}

		return c.Next()
	}
}
