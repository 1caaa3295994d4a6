package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func damagedImage(path string) schema.ImageResult {
	return schema.ImageResult{
		Path:            path,
		Status:          schema.DamagedImage,
		TotalRepairCost: 3430,
		Location:        &schema.GeoPoint{Latitude: 40.7128, Longitude: -74.006},
		Estimates: []schema.DamageEstimate{
			{DamageType: schema.Pothole, Severity: schema.Severe, Confidence: 0.85, AreaSqm: 0.56, RepairCost: 3360, RepairTimeHours: 2.24, RepairDays: 1, Priority: schema.Priority{Level: 2}, CrewSize: schema.CrewSize{Total: 4}},
			{DamageType: schema.Repair, Severity: schema.Minor, Confidence: 0.6, AreaSqm: 0.5, RepairCost: 70, RepairTimeHours: 0.5, RepairDays: 1, Priority: schema.Priority{Level: 4}, CrewSize: schema.CrewSize{Total: 2}},
		},
	}
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	surveyID, err := store.BeginSurvey("uuid", "Main St", time.Now(), map[string]any{"workers": 4})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), surveyID)

	assert.NoError(t, store.RecordImage(1, damagedImage("a.jpg")))
	assert.NoError(t, store.EndSurvey(1, time.Now(), schema.SurveySummary{}, nil))

	runs, err := store.GetAllSurveyRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestAnalysisStore_SQLite(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	surveyID, err := store.BeginSurvey("run-1", "Main St", start, map[string]any{"workers": 4, "detector": "csv"})
	require.NoError(t, err)
	assert.Greater(t, surveyID, int64(0))

	require.NoError(t, store.RecordImage(surveyID, damagedImage("flight/a.jpg")))
	require.NoError(t, store.RecordImage(surveyID, schema.ImageResult{Path: "flight/b.jpg", Status: schema.CleanImage}))
	require.NoError(t, store.RecordImage(surveyID, schema.ImageResult{Path: "flight/c.jpg", Status: schema.ErrorImage, Error: "detector timed out"}))

	summary := schema.SurveySummary{TotalImages: 3, DamagedImages: 1}
	report := &schema.AreaReport{
		OverallCondition:  schema.Fair,
		SummaryStatistics: schema.SummaryStatistics{TotalRepairCost: 3430},
	}
	require.NoError(t, store.EndSurvey(surveyID, start.Add(90*time.Second), summary, report))

	t.Run("survey runs", func(t *testing.T) {
		runs, err := store.GetAllSurveyRuns()
		require.NoError(t, err)
		require.Len(t, runs, 1)

		run := runs[0]
		assert.Equal(t, surveyID, run.SurveyID)
		assert.Equal(t, "run-1", run.RunUUID)
		assert.Equal(t, "Main St", run.AreaName)
		assert.True(t, start.Equal(run.StartTime))
		require.NotNil(t, run.EndTime)
		assert.True(t, start.Add(90*time.Second).Equal(*run.EndTime))
		require.NotNil(t, run.RunDurationMs)
		assert.Equal(t, int32(90000), *run.RunDurationMs)
		assert.Equal(t, int32(3), run.TotalImages)
		require.NotNil(t, run.DamagedImages)
		assert.Equal(t, int32(1), *run.DamagedImages)
		require.NotNil(t, run.TotalCost)
		assert.InDelta(t, 3430.0, *run.TotalCost, 0.001)
		require.NotNil(t, run.OverallStatus)
		assert.Equal(t, "FAIR", *run.OverallStatus)
		require.NotNil(t, run.ConfigParams)
		assert.JSONEq(t, `{"workers":4,"detector":"csv"}`, *run.ConfigParams)
	})

	t.Run("images", func(t *testing.T) {
		images, err := store.GetAllImages()
		require.NoError(t, err)
		require.Len(t, images, 3)

		assert.Equal(t, "flight/a.jpg", images[0].ImagePath)
		assert.Equal(t, "damaged", images[0].Status)
		assert.Equal(t, int32(2), images[0].DamageCount)
		require.NotNil(t, images[0].Latitude)
		assert.InDelta(t, 40.7128, *images[0].Latitude, 1e-9)
		assert.False(t, images[0].RecordedAt.IsZero())

		assert.Equal(t, "clean", images[1].Status)
		assert.Nil(t, images[1].Latitude)
		assert.Nil(t, images[1].ErrorText)

		require.NotNil(t, images[2].ErrorText)
		assert.Equal(t, "detector timed out", *images[2].ErrorText)
	})

	t.Run("estimates", func(t *testing.T) {
		estimates, err := store.GetAllEstimates()
		require.NoError(t, err)
		require.Len(t, estimates, 2)
		for _, est := range estimates {
			assert.Equal(t, "flight/a.jpg", est.ImagePath)
		}

		var pothole schema.EstimateRecord
		for _, est := range estimates {
			if est.DamageType == string(schema.Pothole) {
				pothole = est
			}
		}
		assert.Equal(t, "severe", pothole.Severity)
		assert.InDelta(t, 3360.0, pothole.RepairCost, 0.001)
		assert.Equal(t, int32(2), pothole.PriorityLevel)
		assert.Equal(t, int32(4), pothole.CrewSize)
	})

	t.Run("status", func(t *testing.T) {
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, 1, status.TotalRuns)
		assert.Equal(t, 3, status.TotalImagesSurveyed)
		assert.Equal(t, 2, status.TotalEstimates)
		assert.Equal(t, surveyID, status.LastRunID)
		assert.True(t, start.Equal(status.LastRunTime))
		assert.True(t, start.Equal(status.OldestRunTime))
		assert.Equal(t, int64(3), status.TableSizes[imagesTable])
	})
}

func TestAnalysisStore_DuplicateImage(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	surveyID, err := store.BeginSurvey("run-1", "Main St", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordImage(surveyID, damagedImage("a.jpg")))

	// The whole transaction rolls back, so no estimates are duplicated.
	assert.Error(t, store.RecordImage(surveyID, damagedImage("a.jpg")))
	estimates, err := store.GetAllEstimates()
	require.NoError(t, err)
	assert.Len(t, estimates, 2)
}

func TestAnalysisStore_EndUnknownSurvey(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.EndSurvey(99, time.Now(), schema.SurveySummary{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "survey 99")
}

func TestAnalysisStore_MultipleRuns(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0)
	id1, err := store.BeginSurvey("a", "North", first, nil)
	require.NoError(t, err)
	id2, err := store.BeginSurvey("b", "South", last, nil)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, id2, status.LastRunID)
	assert.True(t, last.Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))

	runs, err := store.GetAllSurveyRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].TotalCost)
}

func TestCreateTrackingQuery(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		for _, table := range trackingTables {
			query := getCreateTrackingQuery(table, backend)
			assert.Contains(t, query, "CREATE TABLE IF NOT EXISTS")
			assert.Contains(t, query, quoteTableName(table, backend))
		}
	}
	assert.Contains(t, getCreateTrackingQuery(surveyRunsTable, schema.PostgreSQLBackend), "BIGSERIAL")
	assert.Contains(t, getCreateTrackingQuery(surveyRunsTable, schema.MySQLBackend), "AUTO_INCREMENT")
}
