package iocache

import (
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetDetectionStore implements the CacheManager interface.
func (m *MockCacheManager) GetDetectionStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetAnalysisStore implements the CacheManager interface.
func (m *MockCacheManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	value, _ := args.Get(0).([]byte)
	return value, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// BeginSurvey implements the AnalysisStore interface.
func (m *MockAnalysisStore) BeginSurvey(runUUID, areaName string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(runUUID, areaName, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndSurvey implements the AnalysisStore interface.
func (m *MockAnalysisStore) EndSurvey(surveyID int64, endTime time.Time, summary schema.SurveySummary, report *schema.AreaReport) error {
	args := m.Called(surveyID, endTime, summary, report)
	return args.Error(0)
}

// RecordImage implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordImage(surveyID int64, result schema.ImageResult) error {
	args := m.Called(surveyID, result)
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AnalysisStatus), args.Error(1)
}

// GetAllSurveyRuns implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllSurveyRuns() ([]schema.SurveyRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.SurveyRunRecord)
	return runs, args.Error(1)
}

// GetAllImages implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllImages() ([]schema.ImageRecord, error) {
	args := m.Called()
	images, _ := args.Get(0).([]schema.ImageRecord)
	return images, args.Error(1)
}

// GetAllEstimates implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllEstimates() ([]schema.EstimateRecord, error) {
	args := m.Called()
	estimates, _ := args.Get(0).([]schema.EstimateRecord)
	return estimates, args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
