package publish

import (
	"context"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of contract.Publisher.
type MockPublisher struct {
	mock.Mock
}

var _ contract.Publisher = &MockPublisher{} // Compile-time check

// Publish mocks the Publish method.
func (m *MockPublisher) Publish(ctx context.Context, result *schema.SurveyResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// Close mocks the Close method.
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
