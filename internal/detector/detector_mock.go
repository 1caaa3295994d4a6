package detector

import (
	"context"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/mock"
)

// MockDetector is a mock implementation of Detector for testing.
type MockDetector struct {
	mock.Mock
}

var _ contract.Detector = &MockDetector{} // Compile-time check

// Detect implements the Detector interface.
func (m *MockDetector) Detect(ctx context.Context, imagePath string) ([]schema.Detection, error) {
	args := m.Called(ctx, imagePath)
	dets, _ := args.Get(0).([]schema.Detection)
	return dets, args.Error(1)
}

// Name implements the Detector interface.
func (m *MockDetector) Name() string {
	args := m.Called()
	return args.String(0)
}
