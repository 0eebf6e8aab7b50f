package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// CorrelationRef builds the provider correlation reference carried in the
// X-Entity-Ref-ID header and provider metadata: "lead-<uuid>-<kind>".
func CorrelationRef(leadUUID, kind string) string {
	return fmt.Sprintf("lead-%s-%s", leadUUID, kind)
}
