package api

import (
	"errors"

	"github.com/veltalldev/photo-gallery/storage"

	"github.com/gofiber/fiber/v2"
)

// Originals effectively never change once written; thumbnails are
// regenerable so they get a shorter lifetime
const (
	photoCacheControl     = "public, max-age=31536000, immutable"
	thumbnailCacheControl = "public, max-age=86400"
)

// RegisterPhotoRoutes adds photo listing, serving and deletion endpoints
func RegisterPhotoRoutes(app *fiber.App) {
	app.Get("/api/photos", ListPhotos)
	app.Delete("/api/photos/:filename", DeletePhoto)
	app.Get("/photos/thumbnail/:filename", GetThumbnail)
	app.Get("/photos/:filename", GetPhoto)
}

// ListPhotos returns all photo filenames, newest-modified first
func ListPhotos(c *fiber.Ctx) error {
	photos, err := storage.PhotoStoreInstance.List()
	if err != nil {
		return handleError(err, fiber.StatusInternalServerError, "Failed to list photos")
	}
	if photos == nil {
		photos = []string{}
	}
	return c.JSON(photos)
}

// GetPhoto serves an original photo with long-lived cache headers
func GetPhoto(c *fiber.Ctx) error {
	path, err := storage.PhotoStoreInstance.Resolve(c.Params("filename"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}
	c.Set(fiber.HeaderCacheControl, photoCacheControl)
	return c.SendFile(path)
}

// GetThumbnail serves the photo's thumbnail, generating it on first request
func GetThumbnail(c *fiber.Ctx) error {
	path, err := storage.PhotoStoreInstance.Thumbnail(c.Params("filename"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "File not found")
		}
		return handleError(err, fiber.StatusInternalServerError, "Failed to generate thumbnail")
	}
	c.Set(fiber.HeaderCacheControl, thumbnailCacheControl)
	return c.SendFile(path)
}

// DeletePhoto removes a photo and its cached thumbnail
func DeletePhoto(c *fiber.Ctx) error {
	if err := storage.PhotoStoreInstance.Delete(c.Params("filename")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "File not found")
		}
		return handleError(err, fiber.StatusInternalServerError, "Failed to delete photo")
	}
	return c.JSON(fiber.Map{"status": "success"})
}
