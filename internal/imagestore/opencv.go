//go:build gocv

package imagestore

import (
	"errors"
	"fmt"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"gocv.io/x/gocv"
)

// OpenCVStore reads image geometry through OpenCV, which also covers formats
// the standard decoders do not.
type OpenCVStore struct{}

var _ contract.ImageStore = &OpenCVStore{} // Compile-time check

// NewOpenCVStore creates an OpenCV backed image store.
func NewOpenCVStore() (*OpenCVStore, error) {
	return &OpenCVStore{}, nil
}

// Shape implements the ImageStore interface.
func (s *OpenCVStore) Shape(imagePath string) (schema.ImageShape, error) {
	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer func() { _ = mat.Close() }()
	if mat.Empty() {
		return schema.ImageShape{}, errors.New("failed to decode image")
	}
	if mat.Rows() == 0 || mat.Cols() == 0 {
		return schema.ImageShape{}, fmt.Errorf("image %q has no pixels", imagePath)
	}
	return schema.ImageShape{
		Height:   mat.Rows(),
		Width:    mat.Cols(),
		Channels: mat.Channels(),
	}, nil
}
