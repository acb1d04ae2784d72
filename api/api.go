package api

import (
	"errors"

	"github.com/veltalldev/photo-gallery/util"

	"github.com/gofiber/fiber/v2"
)

// handleError logs the error and returns a fiber error to standardize
// error handling across API endpoints
func handleError(err error, status int, message string) error {
	util.HandleError(err)
	return fiber.NewError(status, message)
}

// ErrorHandler renders every handler error as {"detail": message}. Fiber
// errors keep their status; anything else collapses to a 500 with the error
// text and no stack trace leaks to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"detail": message})
}
