package imagestore

import (
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/mock"
)

// MockImageStore is a mock implementation of ImageStore for testing.
type MockImageStore struct {
	mock.Mock
}

var _ contract.ImageStore = &MockImageStore{} // Compile-time check

// Shape implements the ImageStore interface.
func (m *MockImageStore) Shape(imagePath string) (schema.ImageShape, error) {
	args := m.Called(imagePath)
	return args.Get(0).(schema.ImageShape), args.Error(1)
}
