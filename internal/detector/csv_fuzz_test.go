package detector

import (
	"math"
	"strings"
	"testing"
)

// FuzzParseRow fuzzes a single detections row against the full header.
func FuzzParseRow(f *testing.F) {
	seeds := []struct {
		image, class, confidence, x1, y1, x2, y2 string
	}{
		{"a.jpg", "D40_Pothole", "0.92", "0", "0", "10", "10"},
		{"north/img001.jpg", "D00", "0.55", "", "", "", ""},
		{"a.jpg", "D40_Pothole", "NaN", "0", "0", "10", "10"},
		{"a.jpg", "3", "Inf", "0", "0", "1e309", "10"},
		{"C:\\flights\\a.jpg", "Repair", "-0", "x", "0", "0", "0"},
		{"./", "D20", "0x1p-1", "0", "0", "0", "0"},
		{"/", "", "", "", "", "", ""},
	}
	for _, seed := range seeds {
		f.Add(seed.image, seed.class, seed.confidence, seed.x1, seed.y1, seed.x2, seed.y2)
	}

	colMap := map[string]int{
		"image": 0, "class_name": 1, "confidence": 2,
		"bbox_x1": 3, "bbox_y1": 4, "bbox_x2": 5, "bbox_y2": 6,
	}
	f.Fuzz(func(t *testing.T, image, class, confidence, x1, y1, x2, y2 string) {
		key, det, err := parseRow([]string{image, class, confidence, x1, y1, x2, y2}, colMap)
		if err != nil {
			return
		}
		if math.IsNaN(det.Confidence) || math.IsInf(det.Confidence, 0) {
			t.Fatalf("accepted non-finite confidence %v from %q", det.Confidence, confidence)
		}
		if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
			t.Fatalf("bad image key %q from %q", key, image)
		}
		if det.BBox != nil && len(det.BBox) != 4 {
			t.Fatalf("bbox has %d coordinates", len(det.BBox))
		}
	})
}
