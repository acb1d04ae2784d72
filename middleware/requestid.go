package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// WithRequestID tags every request with a fresh ID for log correlation
func WithRequestID(c *fiber.Ctx) error {
	rid := uuid.New().String()
	c.Set("X-Request-ID", rid)
	c.Locals("request_id", rid)
	return c.Next()
}
