package api

import (
	"errors"
	"fmt"

	"github.com/veltalldev/photo-gallery/models"
	"github.com/veltalldev/photo-gallery/proxy"
	svc "github.com/veltalldev/photo-gallery/services"

	"github.com/gofiber/fiber/v2"
)

// RegisterGenerationRoutes adds the metadata lookup and generation endpoints
func RegisterGenerationRoutes(app *fiber.App) {
	app.Get("/api/metadata/:image_name", GetImageMetadata)
	app.Post("/api/generate", TriggerGeneration)
}

// GetImageMetadata proxies the downstream metadata lookup for an image and
// returns its JSON body verbatim
func GetImageMetadata(c *fiber.Ctx) error {
	body, err := proxy.FetchImageMetadata(c.UserContext(), c.Params("image_name"))
	if err != nil {
		var upstreamErr *proxy.UpstreamError
		if errors.As(err, &upstreamErr) {
			return fiber.NewError(upstreamErr.StatusCode,
				fmt.Sprintf("Failed to get metadata from InvokeAI: %s", upstreamErr.Body))
		}
		return handleError(err, fiber.StatusInternalServerError, "Failed to get metadata from InvokeAI")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// TriggerGeneration builds a job graph from the request's source-image
// metadata and enqueues a generation batch downstream
func TriggerGeneration(c *fiber.Ctx) error {
	var req models.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resp, err := svc.GetGenSvc().Generate(c.UserContext(), req)
	if err != nil {
		var upstreamErr *proxy.UpstreamError
		if errors.As(err, &upstreamErr) {
			return fiber.NewError(upstreamErr.StatusCode,
				fmt.Sprintf("Failed to trigger generation: %s", upstreamErr.Body))
		}
		return handleError(err, fiber.StatusInternalServerError, "Failed to trigger generation")
	}
	return c.JSON(resp)
}
