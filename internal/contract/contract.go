// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/roadsurvey/schema"
)

// Detector finds road damage in a single image.
// It must return an empty slice, not an error, when an image has no damage.
type Detector interface {
	// Detect runs detection on the image at imagePath. Implementations must
	// honor ctx cancellation so a stuck image cannot stall a survey.
	Detect(ctx context.Context, imagePath string) ([]schema.Detection, error)

	// Name identifies the detector and its settings, e.g. for cache keys.
	Name() string
}

// ImageStore reads image metadata without running detection.
type ImageStore interface {
	Shape(imagePath string) (schema.ImageShape, error)
}

// Publisher ships a finished survey to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, result *schema.SurveyResult) error
	Close() error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetDetectionStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking survey runs and their results.
type AnalysisStore interface {
	// BeginSurvey creates a new survey run and returns its unique ID
	BeginSurvey(runUUID, areaName string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndSurvey updates the survey run with completion data
	EndSurvey(surveyID int64, endTime time.Time, summary schema.SurveySummary, report *schema.AreaReport) error

	// RecordImage stores one image outcome together with its estimates
	RecordImage(surveyID int64, result schema.ImageResult) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllSurveyRuns retrieves all survey runs ordered by ID
	GetAllSurveyRuns() ([]schema.SurveyRunRecord, error)

	// GetAllImages retrieves all recorded images
	GetAllImages() ([]schema.ImageRecord, error)

	// GetAllEstimates retrieves all recorded estimates
	GetAllEstimates() ([]schema.EstimateRecord, error)

	// Close closes the underlying connection
	Close() error
}
