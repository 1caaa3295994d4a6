package detector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRetrying(t *testing.T) {
	pothole := []schema.Detection{{DamageType: schema.Pothole, Confidence: 0.9}}
	flaky := errors.New("model server busy")

	tests := []struct {
		name          string
		retries       int
		failures      int
		expectError   bool
		expectedCalls int
	}{
		{name: "first attempt succeeds", retries: 2, failures: 0, expectedCalls: 1},
		{name: "recovers after one failure", retries: 2, failures: 1, expectedCalls: 2},
		{name: "gives up after retries", retries: 2, failures: 5, expectError: true, expectedCalls: 3},
		{name: "no retries", retries: 0, failures: 1, expectError: true, expectedCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &MockDetector{}
			if tt.failures > 0 {
				next.On("Detect", mock.Anything, "a.jpg").Return(nil, flaky).Times(tt.failures)
			}
			next.On("Detect", mock.Anything, "a.jpg").Return(pothole, nil).Maybe()

			r := NewRetrying(next, tt.retries, time.Millisecond, nil)
			dets, err := r.Detect(context.Background(), "a.jpg")

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, flaky)
			} else {
				require.NoError(t, err)
				assert.Equal(t, pothole, dets)
			}
			next.AssertNumberOfCalls(t, "Detect", tt.expectedCalls)
		})
	}
}

func TestRetryingStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	next := &MockDetector{}
	next.On("Detect", mock.Anything, "a.jpg").Run(func(mock.Arguments) { cancel() }).Return(nil, context.Canceled)

	r := NewRetrying(next, 5, time.Millisecond, nil)
	_, err := r.Detect(ctx, "a.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	next.AssertNumberOfCalls(t, "Detect", 1)
}

func TestRetryingName(t *testing.T) {
	next := &MockDetector{}
	next.On("Name").Return("csv:x@0.30")
	assert.Equal(t, "csv:x@0.30", NewRetrying(next, 1, time.Millisecond, nil).Name())
}
