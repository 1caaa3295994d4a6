package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/roadsurvey/core/algo"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEstimatesArray(t *testing.T) {
	estimates := []schema.DamageEstimate{
		{DamageType: schema.Pothole, SourceImage: "a.jpg"},
		{DamageType: schema.Repair, SourceImage: "a.jpg"},
		{DamageType: schema.BlockCrack, SourceImage: "b.jpg"},
	}
	data, err := json.Marshal(estimates)
	require.NoError(t, err)

	input, err := ParseEstimates(data)
	require.NoError(t, err)
	assert.Len(t, input.Estimates, 3)
	assert.Equal(t, 2, input.TotalImages)
	assert.Empty(t, input.AreaName)
}

func TestParseEstimatesArrayWithoutSources(t *testing.T) {
	input, err := ParseEstimates([]byte(`  [{"damage_type":"D40_Pothole"},{"damage_type":"Repair"}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, input.TotalImages)
}

func TestParseEstimatesSurveyResult(t *testing.T) {
	result := schema.SurveyResult{
		RunID:   "run-1",
		Summary: schema.SurveySummary{AreaName: "Main St", TotalImages: 10},
		Images: []schema.ImageResult{
			{Path: "a.jpg", Estimates: []schema.DamageEstimate{{DamageType: schema.Pothole}}},
			{Path: "b.jpg"},
			{Path: "c.jpg", Estimates: []schema.DamageEstimate{{DamageType: schema.Repair}, {DamageType: schema.Pothole}}},
		},
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)

	input, err := ParseEstimates(data)
	require.NoError(t, err)
	assert.Len(t, input.Estimates, 3)
	assert.Equal(t, schema.Repair, input.Estimates[1].DamageType)
	assert.Equal(t, 10, input.TotalImages)
	assert.Equal(t, "Main St", input.AreaName)
}

func TestParseEstimatesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "   "},
		{"not json", "damage"},
		{"bad array", "[1, 2"},
		{"bad object", `{"images": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEstimates([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadEstimatesMissingFile(t *testing.T) {
	_, err := LoadEstimates(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExecuteSummarize(t *testing.T) {
	dir := t.TempDir()
	estimates := []schema.DamageEstimate{
		algo.Analyze(schema.Detection{DamageType: schema.Pothole, Confidence: 0.85, BBox: []float64{100, 100, 180, 170}}, schema.ImageShape{}),
	}
	data, err := json.Marshal(estimates)
	require.NoError(t, err)
	in := filepath.Join(dir, "estimates.json")
	require.NoError(t, os.WriteFile(in, data, 0o644))

	out := filepath.Join(dir, "report.json")
	cfg := &contract.Config{AreaName: "Main St", Output: schema.JSONOut, OutputFile: out, Precision: 2}
	require.NoError(t, ExecuteSummarize(cfg, in, 4))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	var report schema.AreaReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "Main St", report.AreaName)
	assert.Equal(t, schema.Fair, report.OverallCondition)
	assert.Equal(t, 4, report.SummaryStatistics.TotalImagesSurveyed)
	assert.Equal(t, 25.0, report.SummaryStatistics.DamageRatePercentage)
}

func TestExecuteEstimate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "estimate.json")
	cfg := &contract.Config{PixelToMeter: 0.01, Output: schema.JSONOut, OutputFile: out, Precision: 2}
	det := schema.Detection{DamageType: schema.Pothole, Confidence: 0.85, BBox: []float64{100, 100, 180, 170}}
	require.NoError(t, ExecuteEstimate(cfg, det, schema.ImageShape{Height: 640, Width: 640, Channels: 3}))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	var est schema.DamageEstimate
	require.NoError(t, json.Unmarshal(body, &est))
	assert.Equal(t, schema.Severe, est.Severity)
	assert.Equal(t, 0.56, est.AreaSqm)
	assert.Equal(t, 2, est.Priority.Level)
}
