package algo

import (
	"math"
	"testing"

	"github.com/huangsam/roadsurvey/schema"
)

// FuzzAnalyze fuzzes the estimator with arbitrary classes, confidences and boxes.
func FuzzAnalyze(f *testing.F) {
	seeds := []struct {
		damage         string
		confidence     float64
		x1, y1, x2, y2 float64
	}{
		{"D40", 0.9, 0, 0, 200, 200},
		{"D20", 0.65, 12.5, 7.25, 480.75, 639.5},
		{"Repair", 0.1, 640, 640, 0, 0},
		{"Unknown", 0, 0, 0, 0, 0},
		{"D00", 1, -1e6, -1e6, 1e6, 1e6},
		{"D10", math.NaN(), math.Inf(1), 0, 10, 10},
		{"D44", 0.8, 1e300, 1e300, -1e300, -1e300},
	}
	for _, seed := range seeds {
		f.Add(seed.damage, seed.confidence, seed.x1, seed.y1, seed.x2, seed.y2)
	}

	f.Fuzz(func(t *testing.T, damage string, confidence, x1, y1, x2, y2 float64) {
		det := schema.Detection{
			DamageType: schema.ParseDamageType(damage),
			Confidence: confidence,
			BBox:       []float64{x1, y1, x2, y2},
		}
		est := Analyze(det, testShape)

		for name, v := range map[string]float64{"area": est.AreaSqm, "cost": est.RepairCost, "hours": est.RepairTimeHours} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Fatalf("%s = %v for %+v", name, v, det)
			}
		}
		if want := int(math.Ceil(est.RepairTimeHours / HoursPerWorkday)); est.RepairDays != want {
			t.Fatalf("repair days = %d, want ceil(%v/8) = %d", est.RepairDays, est.RepairTimeHours, want)
		}
		if est.Priority != PriorityFor(est.Severity) {
			t.Fatalf("priority %+v does not match severity %s", est.Priority, est.Severity)
		}
	})
}

// FuzzNewEstimator fuzzes the pixel ratio, which comes straight from user config.
func FuzzNewEstimator(f *testing.F) {
	seeds := []float64{0.01, 0.02, 10, 10.5, 0, -1, 1e300, math.NaN(), math.Inf(1), 5e-324}
	for _, seed := range seeds {
		f.Add(seed, 1e6)
	}

	f.Fuzz(func(t *testing.T, ratio, side float64) {
		est := NewEstimator(ratio).Analyze(schema.Detection{
			DamageType: schema.Pothole,
			Confidence: 0.9,
			BBox:       []float64{0, 0, side, side},
		}, testShape)

		for name, v := range map[string]float64{"area": est.AreaSqm, "cost": est.RepairCost, "hours": est.RepairTimeHours} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Fatalf("%s = %v for ratio %v side %v", name, v, ratio, side)
			}
		}
		if est.RepairDays < 0 {
			t.Fatalf("repair days = %d", est.RepairDays)
		}
	})
}
