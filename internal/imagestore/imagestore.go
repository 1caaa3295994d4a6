// Package imagestore reads image geometry for the survey pipeline.
package imagestore

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

// DefaultShape is used when an image header cannot be read.
var DefaultShape = schema.ImageShape{Height: 640, Width: 640, Channels: 3}

// HeaderStore reads dimensions from the encoded header without decoding pixels.
type HeaderStore struct{}

var _ contract.ImageStore = &HeaderStore{} // Compile-time check

// NewHeaderStore creates a header-only image store.
func NewHeaderStore() *HeaderStore {
	return &HeaderStore{}
}

// Shape implements the ImageStore interface.
func (s *HeaderStore) Shape(imagePath string) (schema.ImageShape, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return schema.ImageShape{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return schema.ImageShape{}, fmt.Errorf("failed to read image header of %q: %w", imagePath, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return schema.ImageShape{}, fmt.Errorf("%s image %q has no pixels", format, imagePath)
	}
	return schema.ImageShape{
		Height:   cfg.Height,
		Width:    cfg.Width,
		Channels: channelsOf(cfg.ColorModel),
	}, nil
}

// channelsOf reports 1 for grayscale models and 3 for everything else,
// matching how color images are loaded for detection.
func channelsOf(model color.Model) int {
	switch model {
	case color.GrayModel, color.Gray16Model:
		return 1
	default:
		return 3
	}
}

// New returns the best available image store: OpenCV when the binary is
// built with the gocv tag, the header reader otherwise.
func New() contract.ImageStore {
	if store, err := NewOpenCVStore(); err == nil {
		return store
	}
	return NewHeaderStore()
}

// ShapeOrDefault returns the image shape or DefaultShape when it cannot be
// read. The error is returned alongside so callers can log it.
func ShapeOrDefault(store contract.ImageStore, imagePath string) (schema.ImageShape, error) {
	shape, err := store.Shape(imagePath)
	if err != nil {
		return DefaultShape, err
	}
	return shape, nil
}
