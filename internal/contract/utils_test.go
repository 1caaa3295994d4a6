package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		severity schema.Severity
		expected string
	}{
		{schema.Minor, "Minor"},
		{schema.Moderate, "Moderate"},
		{schema.Severe, "Severe"},
		{schema.Critical, "Critical"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.severity))
			assert.Contains(t, GetColorLabel(tt.severity), tt.expected)
		})
	}
}

func TestGetConditionAndRiskLabel(t *testing.T) {
	for _, cond := range []schema.Condition{schema.Excellent, schema.Good, schema.Fair, schema.Poor, schema.CriticalState} {
		assert.Contains(t, GetConditionLabel(cond), string(cond))
	}
	for _, level := range []schema.RiskLevel{schema.LowRisk, schema.MediumRisk, schema.HighRisk, schema.VeryHighRisk} {
		assert.Contains(t, GetRiskLabel(level), string(level))
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".roadsurvey_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir))

	analysisPath := GetAnalysisDBFilePath()
	assert.Contains(t, analysisPath, ".roadsurvey_analysis.db")
	assert.NotEqual(t, cachePath, analysisPath)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.jpg", TruncatePath("short.jpg", 20))
	assert.Equal(t, "...ght/img_0001.jpg", TruncatePath("flights/north/flight/img_0001.jpg", 19))
	assert.Equal(t, "abcdef", TruncatePath("abcdef", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestClocks(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, fixed, FixedClock{T: fixed}.Now())
	assert.WithinDuration(t, time.Now(), SystemClock{}.Now(), time.Second)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "verbose enables debug")

	logger, err = NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
