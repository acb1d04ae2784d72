package api

import (
	"github.com/veltalldev/photo-gallery/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// RegisterAllRoutes wires the middleware chain and all API routes into the
// fiber app. The whitelist runs before any handler; a blocked client never
// reaches route logic.
func RegisterAllRoutes(app *fiber.App, whitelist *middleware.Whitelist) {
	app.Use(logger.New(
		logger.Config{
			Format:     "${time} ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "Local",
		},
	)).Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
		MaxAge:       3600,
	})).Use(whitelist.Handler()).Use(middleware.WithRequestID)

	RegisterPhotoRoutes(app)
	RegisterGenerationRoutes(app)
}
