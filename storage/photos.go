// Package storage manages the photo directory and its derived thumbnails
package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/veltalldev/photo-gallery/config"
	"github.com/veltalldev/photo-gallery/util"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// ErrNotFound is returned when a name does not resolve to an existing photo
var ErrNotFound = errors.New("file not found")

var photoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// PhotoStore lists, serves and deletes photos under a fixed root directory
// and lazily derives one cached thumbnail per original
type PhotoStore struct {
	root     string
	thumbDir string
	maxSize  int
	quality  int
}

// PhotoStoreInstance is the shared store, set up once at startup
var PhotoStoreInstance *PhotoStore

// InitPhotoStore creates the shared photo store from configuration
func InitPhotoStore() error {
	conf := config.GetConfig(nil)
	store, err := NewPhotoStore(conf.Photos)
	if err != nil {
		return err
	}
	PhotoStoreInstance = store
	return nil
}

// NewPhotoStore resolves the configured directories and ensures they exist
func NewPhotoStore(conf config.PhotosConfig) (*PhotoStore, error) {
	root, err := filepath.Abs(conf.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photo directory: %w", err)
	}
	thumbDir, err := filepath.Abs(conf.ThumbnailDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve thumbnail directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	return &PhotoStore{
		root:     root,
		thumbDir: thumbDir,
		maxSize:  conf.ThumbnailMaxSize,
		quality:  conf.ThumbnailQuality,
	}, nil
}

// List returns photo filenames sorted by modification time, newest first.
// Subdirectories and non-image files are excluded.
func (s *PhotoStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, util.HandleError(fmt.Errorf("failed to read photo directory: %w", err))
	}

	type photoInfo struct {
		name  string
		mtime int64
	}
	var photos []photoInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !photoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		photos = append(photos, photoInfo{name: entry.Name(), mtime: info.ModTime().UnixNano()})
	}

	sort.Slice(photos, func(i, j int) bool {
		return photos[i].mtime > photos[j].mtime
	})

	names := make([]string, len(photos))
	for i, p := range photos {
		names[i] = p.name
	}
	return names, nil
}

// Resolve maps a client-supplied name to a path inside the photo root.
// Names with path separators or traversal sequences are rejected, and the
// file must exist as a regular file.
func (s *PhotoStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", ErrNotFound
	}
	path := filepath.Join(s.root, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return path, nil
}

// thumbnailPath derives the cache location for a photo's thumbnail: a stable
// hash of the resolved path plus the original basename for readability
func (s *PhotoStore) thumbnailPath(photoPath string) string {
	sum := sha256.Sum256([]byte(photoPath))
	base := strings.TrimSuffix(filepath.Base(photoPath), filepath.Ext(photoPath))
	return filepath.Join(s.thumbDir, fmt.Sprintf("%x_%s.jpg", sum[:8], base))
}

// Thumbnail returns the path of the cached thumbnail for the named photo,
// generating it on first request
func (s *PhotoStore) Thumbnail(name string) (string, error) {
	photoPath, err := s.Resolve(name)
	if err != nil {
		return "", err
	}

	thumbPath := s.thumbnailPath(photoPath)
	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	if err := s.generateThumbnail(photoPath, thumbPath); err != nil {
		return "", util.HandleError(err, logrus.Fields{"photo": name})
	}
	util.LogDebug("Generated thumbnail", logrus.Fields{
		"photo": name,
		"thumb": filepath.Base(thumbPath),
	})
	return thumbPath, nil
}

// generateThumbnail decodes the original, flattens it onto an opaque RGB
// canvas, scales it to fit the bounding box and writes a JPEG. The encode
// goes to a temp file first so a concurrent reader never sees partial data.
func (s *PhotoStore) generateThumbnail(photoPath, thumbPath string) error {
	f, err := os.Open(photoPath)
	if err != nil {
		return fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode photo: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	scale := 1.0
	if width > s.maxSize || height > s.maxSize {
		sw := float64(s.maxSize) / float64(width)
		sh := float64(s.maxSize) / float64(height)
		scale = min(sw, sh)
	}
	dw := max(int(float64(width)*scale), 1)
	dh := max(int(float64(height)*scale), 1)

	// White canvas flattens alpha and palette images into plain RGB
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	tmp, err := os.CreateTemp(s.thumbDir, ".thumb-*")
	if err != nil {
		return fmt.Errorf("failed to create temp thumbnail: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	if err := os.Rename(tmp.Name(), thumbPath); err != nil {
		return fmt.Errorf("failed to store thumbnail: %w", err)
	}
	return nil
}

// Delete removes a photo and its cached thumbnail. A missing thumbnail is
// not an error; a missing original is.
func (s *PhotoStore) Delete(name string) error {
	photoPath, err := s.Resolve(name)
	if err != nil {
		return err
	}
	thumbPath := s.thumbnailPath(photoPath)

	if err := os.Remove(photoPath); err != nil {
		return util.HandleError(fmt.Errorf("failed to delete photo: %w", err))
	}
	if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
		util.LogWarning("Failed to delete thumbnail", logrus.Fields{
			"photo": name,
			"error": err,
		})
	}
	return nil
}
