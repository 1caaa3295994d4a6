//go:build !gocv

package imagestore

import (
	"errors"

	"github.com/huangsam/roadsurvey/schema"
)

// OpenCVStore is unavailable without the gocv build tag.
type OpenCVStore struct{}

// NewOpenCVStore always fails when built without the gocv tag.
func NewOpenCVStore() (*OpenCVStore, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

// Shape returns an error when built without the gocv tag.
func (s *OpenCVStore) Shape(imagePath string) (schema.ImageShape, error) {
	_ = imagePath
	return schema.ImageShape{}, errors.New("gocv build tag is not enabled")
}
