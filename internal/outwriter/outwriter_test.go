package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/roadsurvey/core/agg"
	"github.com/huangsam/roadsurvey/core/algo"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var surveyTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func sampleEstimate() schema.DamageEstimate {
	return algo.Analyze(schema.Detection{
		DamageType: schema.Pothole,
		Confidence: 0.85,
		BBox:       []float64{100, 100, 180, 170},
	}, schema.ImageShape{Height: 640, Width: 640, Channels: 3})
}

func sampleSurvey() *schema.SurveyResult {
	est := sampleEstimate()
	est.SourceImage = "flight/img_lat40.7128_lon-74.0060.jpg"
	images := []schema.ImageResult{
		{
			Path:            est.SourceImage,
			Status:          schema.DamagedImage,
			Estimates:       []schema.DamageEstimate{est},
			Location:        &schema.GeoPoint{Latitude: 40.7128, Longitude: -74.006},
			LocationLabel:   "40.712800, -74.006000",
			TotalRepairCost: est.RepairCost,
			TotalRepairTime: est.RepairTimeHours,
			HighestPriority: est.Priority.Level,
			MostSevere:      est.Severity,
		},
		{Path: "flight/clean.jpg", Status: schema.CleanImage, LocationLabel: "Main St"},
		{Path: "flight/broken.jpg", Status: schema.ErrorImage, LocationLabel: "Main St", Error: "detector timed out"},
	}
	aggregator := agg.NewAggregator(contract.FixedClock{T: surveyTime}, agg.DefaultPolicy())
	return &schema.SurveyResult{
		RunID: "run-123",
		Summary: schema.SurveySummary{
			AreaName:      "Main St",
			TotalImages:   3,
			DamagedImages: 1,
			CleanImages:   1,
			ErrorImages:   1,
			TotalDamages:  1,
		},
		Report: aggregator.Summarize("Main St", []schema.DamageEstimate{est}, 3),
		Images: images,
	}
}

func testConfig(output schema.OutputMode, outputFile string) *contract.Config {
	return &contract.Config{
		Output:       output,
		OutputFile:   outputFile,
		Precision:    2,
		Limit:        25,
		Width:        160,
		Workers:      2,
		CacheBackend: schema.NoneBackend,
	}
}

func TestWriteSurveyResults(t *testing.T) {
	result := sampleSurvey()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "survey.json")
		require.NoError(t, NewOutWriter().WriteSurvey(result, testConfig(schema.JSONOut, path), time.Second))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded schema.SurveyResult
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "run-123", decoded.RunID)
		require.Len(t, decoded.Images, 3)
		assert.Equal(t, schema.ErrorImage, decoded.Images[2].Status)
		require.NotNil(t, decoded.Report)
		assert.Equal(t, result.Report.OverallCondition, decoded.Report.OverallCondition)
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "survey.csv")
		require.NoError(t, WriteSurveyResults(result, testConfig(schema.CSVOut, path), time.Second))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)

		require.Len(t, records, 4) // header + one estimate + clean + error
		assert.Equal(t, surveyCSVHeader, records[0])
		assert.Equal(t, "flight/img_lat40.7128_lon-74.0060.jpg", records[1][0])
		assert.Equal(t, "40.7128", records[1][2])
		assert.Equal(t, string(schema.Pothole), records[1][4])
		assert.Equal(t, "clean", records[2][1])
		assert.Empty(t, records[2][4])
		assert.Equal(t, "error", records[3][1])
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "survey.parquet")
		require.NoError(t, WriteSurveyResults(result, testConfig(schema.ParquetOut, path), time.Second))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("parquet requires file", func(t *testing.T) {
		err := WriteSurveyResults(result, testConfig(schema.ParquetOut, ""), time.Second)
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "survey.txt")
		require.NoError(t, WriteSurveyResults(result, testConfig(schema.TextOut, path), 1500*time.Millisecond))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out := string(data)
		assert.Contains(t, out, "clean.jpg")
		assert.Contains(t, out, "Showing 3 of 3 images (damaged: 1, clean: 1, errors: 1)")
		assert.Contains(t, out, "Survey run-123 completed in 1.5s with 2 workers")
		assert.Contains(t, out, "Area: Main St")
		assert.Contains(t, out, "Recommendations:")
		assert.Contains(t, out, "[PREVENTIVE]")
	})

	t.Run("text respects limit", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := testConfig(schema.TextOut, "")
		cfg.Limit = 1
		fmtFloat, fmtMoney := createFormatters(2)
		require.NoError(t, writeSurveyTable(&buf, result, cfg, fmtFloat, fmtMoney, time.Second))
		assert.Contains(t, buf.String(), "Showing 1 of 3 images")
		assert.NotContains(t, buf.String(), "broken.jpg")
	})
}

func TestWriteEstimateResult(t *testing.T) {
	est := sampleEstimate()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "estimate.json")
		require.NoError(t, NewOutWriter().WriteEstimate(est, testConfig(schema.JSONOut, path)))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded schema.DamageEstimate
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, est.RepairCost, decoded.RepairCost)
		assert.Equal(t, est.Severity, decoded.Severity)
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "estimate.csv")
		require.NoError(t, WriteEstimateResult(est, testConfig(schema.CSVOut, path)))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, strings.Join(estimateColumns, ","), lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "D40_Pothole,Severe,0.85,"))
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "estimate.parquet")
		require.NoError(t, WriteEstimateResult(est, testConfig(schema.ParquetOut, path)))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		fmtFloat, fmtMoney := createFormatters(2)
		require.NoError(t, writeEstimateTable(&buf, est, fmtFloat, fmtMoney))
		out := buf.String()
		assert.Contains(t, out, est.DamageType.DisplayName())
		assert.Contains(t, out, fmtMoney(est.RepairCost))
		assert.Contains(t, out, est.RepairMethod)
	})
}

func TestWriteReportResult(t *testing.T) {
	report := sampleSurvey().Report

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		fmtFloat, fmtMoney := createFormatters(2)
		require.NoError(t, writeCSVWithHeader(&buf, []string{"section", "key", "value"}, func(cw *csv.Writer) error {
			return cw.WriteAll(reportRecords(report, fmtFloat, fmtMoney))
		}))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"area", "name", "Main St"}, records[1])
		assert.Contains(t, records, []string{"budget", "total_budget", fmtMoney(report.BudgetBreakdown.TotalBudget)})
		assert.Contains(t, records, []string{"risk", "level", string(report.RiskAssessment.RiskLevel)})
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		err := WriteReportResult(report, testConfig(schema.ParquetOut, "out.parquet"))
		assert.ErrorContains(t, err, "not supported")
	})

	t.Run("clean text", func(t *testing.T) {
		clean := agg.NewAggregator(contract.FixedClock{T: surveyTime}, agg.DefaultPolicy()).Summarize("Elm St", nil, 4)
		var buf bytes.Buffer
		fmtFloat, fmtMoney := createFormatters(2)
		require.NoError(t, writeReportText(&buf, clean, fmtFloat, fmtMoney))
		out := buf.String()
		assert.Contains(t, out, "EXCELLENT")
		assert.Contains(t, out, "Next inspection: 2025-09-06")
		assert.Contains(t, out, "crack_monitoring: 6 months")
		assert.Contains(t, out, "[ROUTINE] Continue regular monitoring")
		assert.NotContains(t, out, "Risk:")
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		require.NoError(t, NewOutWriter().WriteReport(report, testConfig(schema.JSONOut, path)))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"area_name": "Main St"`)
	})
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, fmtMoney := createFormatters(1)
	assert.Equal(t, "3.1", fmtFloat(3.14159))
	assert.Equal(t, "3.14", fmtMoney(3.14159))
	assert.Equal(t, "-42.57", fmtMoney(-42.567))
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{80, minPathWidth},
		{160, 160 - surveyFixedWidth - locationWidth},
		{400, maxPathWidth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxTablePathWidth(&contract.Config{Width: tt.width}))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	assert.Error(t, writeJSON(&buf, map[string]any{"bad": make(chan int)}))
}
