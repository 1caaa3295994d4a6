package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteAnalysisExport(t *testing.T) {
	t.Run("writes three files", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite", Connected: true, TotalRuns: 1}, nil)
		store.On("GetAllSurveyRuns").Return([]schema.SurveyRunRecord{{SurveyID: 1, RunUUID: "u", AreaName: "Main St", StartTime: testTime}}, nil)
		store.On("GetAllImages").Return([]schema.ImageRecord{{SurveyID: 1, ImagePath: "a.jpg", Status: "clean", RecordedAt: testTime}}, nil)
		store.On("GetAllEstimates").Return([]schema.EstimateRecord{}, nil)

		base := filepath.Join(t.TempDir(), "history")
		var buf bytes.Buffer
		require.NoError(t, ExecuteAnalysisExport(&buf, store, base))

		for _, suffix := range []string{".survey_runs.parquet", ".images.parquet", ".estimates.parquet"} {
			_, err := os.Stat(base + suffix)
			assert.NoError(t, err, suffix)
		}
		assert.Contains(t, buf.String(), "Exported 1 survey runs")
		assert.Contains(t, buf.String(), "Export complete!")
		store.AssertExpectations(t)
	})

	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteAnalysisExport(&bytes.Buffer{}, &MockAnalysisStore{}, "")
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("requires store", func(t *testing.T) {
		err := ExecuteAnalysisExport(&bytes.Buffer{}, nil, "out")
		assert.ErrorContains(t, err, "survey tracking is disabled")
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExecuteAnalysisExport(&bytes.Buffer{}, store, filepath.Join(t.TempDir(), "out"))
		assert.ErrorContains(t, err, "no survey data found")
	})

	t.Run("query failure", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{TotalRuns: 1}, nil)
		store.On("GetAllSurveyRuns").Return(nil, errors.New("boom"))
		err := ExecuteAnalysisExport(&bytes.Buffer{}, store, filepath.Join(t.TempDir(), "out"))
		assert.ErrorContains(t, err, "failed to retrieve survey runs")
	})
}
