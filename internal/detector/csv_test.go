package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detections.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVDetector(t *testing.T) {
	path := writeCSV(t, `image,class_name,confidence,bbox_x1,bbox_y1,bbox_x2,bbox_y2
flight/img_001.jpg,D40_Pothole,0.85,100,100,180,170
img_001.jpg,D00,0.55,0,0,300,20
img_002.jpg,D20_Alligator_Crack,0.20,0,0,10,10
img_003.jpg,Repair,0.60,,,,
img_004.jpg,D10,not-a-number,0,0,1,1
img_005.jpg,D10,NaN,0,0,1,1
img_006.jpg,D10,+Inf,0,0,1,1
`)

	d, err := NewCSVDetector(path, 0.3, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4, d.Images(), "invalid rows are skipped")

	tests := []struct {
		name     string
		image    string
		expected []schema.Detection
	}{
		{
			name:     "path row wins over base name",
			image:    "/data/flight/img_001.jpg",
			expected: []schema.Detection{{DamageType: schema.Pothole, Confidence: 0.85, BBox: []float64{100, 100, 180, 170}}},
		},
		{
			name:     "base name fallback in other directory",
			image:    "/data/flight-01/img_001.jpg",
			expected: []schema.Detection{{DamageType: schema.LongitudinalCrack, Confidence: 0.55, BBox: []float64{0, 0, 300, 20}}},
		},
		{name: "below threshold is clean", image: "img_002.jpg", expected: []schema.Detection{}},
		{
			name:     "missing bbox kept as malformed",
			image:    "img_003.jpg",
			expected: []schema.Detection{{DamageType: schema.Repair, Confidence: 0.6}},
		},
		{name: "unknown image is clean", image: "img_999.jpg", expected: []schema.Detection{}},
		{name: "nan confidence row skipped", image: "img_005.jpg", expected: []schema.Detection{}},
		{name: "infinite confidence row skipped", image: "img_006.jpg", expected: []schema.Detection{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dets, err := d.Detect(context.Background(), tt.image)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dets)
		})
	}
}

func TestCSVDetectorHeaders(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError bool
	}{
		{"filename and class_id aliases", "filename,class_id,confidence\na.jpg,3,0.9\n", false},
		{"missing image column", "class_name,confidence\nD40,0.9\n", true},
		{"missing class column", "image,confidence\na.jpg,0.9\n", true},
		{"empty file", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVDetector(writeCSV(t, tt.content), 0.3, zap.NewNop())
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCSVDetectorClassID(t *testing.T) {
	d, err := NewCSVDetector(writeCSV(t, "filename,class_id,confidence\na.jpg,3,0.9\n"), 0.3, zap.NewNop())
	require.NoError(t, err)

	dets, err := d.Detect(context.Background(), "a.jpg")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, schema.Pothole, dets[0].DamageType)
}

func TestCSVDetectorMissingFile(t *testing.T) {
	_, err := NewCSVDetector(filepath.Join(t.TempDir(), "nope.csv"), 0.3, zap.NewNop())
	assert.Error(t, err)
}

func TestCSVDetectorCancelled(t *testing.T) {
	d, err := NewCSVDetector(writeCSV(t, "image,class_name,confidence\na.jpg,D40,0.9\n"), 0.3, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Detect(ctx, "a.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVDetectorSameNameInSubfolders(t *testing.T) {
	root := t.TempDir()
	north := filepath.Join(root, "north", "img001.jpg")
	south := filepath.Join(root, "south", "img001.jpg")

	tests := []struct {
		name  string
		csv   string
		north int
		south int
	}{
		{"relative path", "image,class_name,confidence\nnorth/img001.jpg,D40,0.9\n", 1, 0},
		{"backslash path", "image,class_name,confidence\nsouth\\img001.jpg,D40,0.9\n", 0, 1},
		{"dot prefixed path", "image,class_name,confidence\n./north/img001.jpg,D40,0.9\n", 1, 0},
		{"absolute path", "image,class_name,confidence\n" + filepath.ToSlash(north) + ",D40,0.9\n", 1, 0},
		{"one row per folder", "image,class_name,confidence\nnorth/img001.jpg,D40,0.9\nsouth/img001.jpg,D00,0.8\nsouth/img001.jpg,D10,0.7\n", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewCSVDetector(writeCSV(t, tt.csv), 0.3, zap.NewNop())
			require.NoError(t, err)

			dets, err := d.Detect(context.Background(), north)
			require.NoError(t, err)
			assert.Len(t, dets, tt.north)

			dets, err = d.Detect(context.Background(), south)
			require.NoError(t, err)
			assert.Len(t, dets, tt.south)
		})
	}
}

func TestCSVDetectorWarnsOnAmbiguousName(t *testing.T) {
	obsCore, logs := observer.New(zapcore.WarnLevel)
	d, err := NewCSVDetector(writeCSV(t, "image,class_name,confidence\nimg001.jpg,D40,0.9\n"), 0.3, zap.New(obsCore))
	require.NoError(t, err)

	root := t.TempDir()
	images := []string{
		filepath.Join(root, "north", "img001.jpg"),
		filepath.Join(root, "north", "img001.jpg"),
		filepath.Join(root, "south", "img001.jpg"),
		filepath.Join(root, "west", "img001.jpg"),
	}
	for _, image := range images {
		dets, err := d.Detect(context.Background(), image)
		require.NoError(t, err)
		assert.Len(t, dets, 1)
	}

	warnings := logs.FilterMessageSnippet("matches several images").All()
	require.Len(t, warnings, 1, "warn once per name")
	assert.Equal(t, "img001.jpg", warnings[0].ContextMap()["name"])
	assert.Equal(t, images[2], warnings[0].ContextMap()["also"])
}
