package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript creates a shell script detector that runs body.
func writeScript(t *testing.T, body string) []string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detect.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return []string{"sh", path}
}

func TestExecDetectorOutputs(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []schema.Detection
	}{
		{
			name: "wrapped object",
			body: `echo '{"detections":[{"damage_type":"D40_Pothole","confidence":0.9,"bbox":[0,0,10,10]}]}'`,
			expected: []schema.Detection{
				{DamageType: schema.Pothole, Confidence: 0.9, BBox: []float64{0, 0, 10, 10}},
			},
		},
		{
			name: "bare array with class ids",
			body: `echo '[{"class_id":2,"confidence":0.5,"bbox":[1,2,3,4]},{"class_name":"Repair","confidence":0.7}]'`,
			expected: []schema.Detection{
				{DamageType: schema.AlligatorCrack, Confidence: 0.5, BBox: []float64{1, 2, 3, 4}},
				{DamageType: schema.Repair, Confidence: 0.7},
			},
		},
		{
			name: "below threshold dropped",
			body: `echo '[{"damage_type":"D00","confidence":0.1},{"damage_type":"D10","confidence":0.3}]'`,
			expected: []schema.Detection{
				{DamageType: schema.TransverseCrack, Confidence: 0.3},
			},
		},
		{
			name:     "empty output is clean",
			body:     `true`,
			expected: []schema.Detection{},
		},
		{
			name:     "empty list is clean",
			body:     `echo '{"detections":[]}'`,
			expected: []schema.Detection{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewExecDetector(writeScript(t, tt.body), 0.3)
			require.NoError(t, err)

			dets, err := d.Detect(context.Background(), "road.jpg")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dets)
		})
	}
}

func TestExecDetectorPassesImagePath(t *testing.T) {
	d, err := NewExecDetector(writeScript(t, `echo "[{\"damage_type\":\"$1\",\"confidence\":1}]"`), 0)
	require.NoError(t, err)

	dets, err := d.Detect(context.Background(), "pothole")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, schema.Pothole, dets[0].DamageType)
}

func TestExecDetectorFailures(t *testing.T) {
	t.Run("non-zero exit includes stderr", func(t *testing.T) {
		d, err := NewExecDetector(writeScript(t, `echo "model crashed" >&2; exit 3`), 0.3)
		require.NoError(t, err)

		_, err = d.Detect(context.Background(), "road.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model crashed")
	})

	t.Run("invalid json", func(t *testing.T) {
		d, err := NewExecDetector(writeScript(t, `echo 'not json'`), 0.3)
		require.NoError(t, err)

		_, err = d.Detect(context.Background(), "road.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output")
	})

	t.Run("timeout", func(t *testing.T) {
		d, err := NewExecDetector(writeScript(t, `exec sleep 5`), 0.3)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		start := time.Now()
		_, err = d.Detect(ctx, "road.jpg")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 4*time.Second)
	})

	t.Run("empty command", func(t *testing.T) {
		_, err := NewExecDetector(nil, 0.3)
		assert.Error(t, err)
	})
}

func TestExecDetectorName(t *testing.T) {
	d, err := NewExecDetector([]string{"python3", "detect.py"}, 0.25)
	require.NoError(t, err)
	assert.Equal(t, "exec:python3 detect.py@0.25", d.Name())
}
