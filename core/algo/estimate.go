// Package algo turns individual detections into repair estimates.
package algo

import (
	"math"
	"slices"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/shopspring/decimal"
)

// Tunable estimation constants.
const (
	DefaultPixelToMeter = 0.01 // meters per pixel at survey altitude
	DefaultAreaSqm      = 0.1  // area used when the bounding box is unusable
	HoursPerWorkday     = 8

	// MaxPixelCoordinate bounds bbox coordinates; larger boxes are unusable.
	MaxPixelCoordinate = 1_000_000
	MaxPixelToMeter    = 10
)

var (
	criticalAreaSqm = decimal.NewFromInt(2)
	moderateAreaSqm = decimal.NewFromFloat(0.5)
	largeCrewArea   = decimal.NewFromInt(5)
	mediumCrewArea  = decimal.NewFromInt(2)
	majorTrafficSqm = decimal.NewFromInt(1)
	hoursPerWorkday = decimal.NewFromInt(HoursPerWorkday)
)

// Estimator converts detections into repair estimates.
// The zero value is not usable; construct with NewEstimator.
type Estimator struct {
	pixelToMeter decimal.Decimal
}

// NewEstimator builds an Estimator for the given meters-per-pixel ratio.
// Ratios outside (0, MaxPixelToMeter] fall back to DefaultPixelToMeter.
func NewEstimator(pixelToMeter float64) *Estimator {
	if !(pixelToMeter > 0 && pixelToMeter <= MaxPixelToMeter) {
		pixelToMeter = DefaultPixelToMeter
	}
	return &Estimator{pixelToMeter: decimal.NewFromFloat(pixelToMeter)}
}

var defaultEstimator = NewEstimator(DefaultPixelToMeter)

// Analyze estimates a detection with the default pixel ratio.
func Analyze(det schema.Detection, shape schema.ImageShape) schema.DamageEstimate {
	return defaultEstimator.Analyze(det, shape)
}

// Analyze converts one detection into a full repair estimate. It never fails:
// malformed boxes use DefaultAreaSqm and unknown damage classes are priced as
// potholes. The image shape is accepted for callers that scale by resolution
// and does not change the result.
func (e *Estimator) Analyze(det schema.Detection, _ schema.ImageShape) schema.DamageEstimate {
	area := e.area(det.BBox)
	severity := ClassifySeverity(det.DamageType, det.Confidence, area.InexactFloat64())
	rates := lookupRepair(det.DamageType, severity)

	cost := area.Mul(decimal.NewFromInt(rates.CostPerSqm)).Round(2)
	hours := area.Mul(decimal.NewFromFloat(rates.HoursPerSqm)).Round(2)
	days := hours.Div(hoursPerWorkday).Ceil().IntPart()

	crew := crewFor(severity, area)

	return schema.DamageEstimate{
		DamageType:         det.DamageType,
		Severity:           severity,
		Confidence:         det.Confidence,
		AreaSqm:            area.Round(2).InexactFloat64(),
		BBox:               slices.Clone(det.BBox),
		RepairCost:         cost.InexactFloat64(),
		RepairTimeHours:    hours.InexactFloat64(),
		RepairDays:         int(days),
		Priority:           PriorityFor(severity),
		RepairMethod:       rates.Method,
		MaterialsNeeded:    rates.Material,
		CrewSize:           crew,
		EquipmentNeeded:    equipmentFor(det.DamageType, severity),
		SafetyRequirements: safetyFor(severity),
		WeatherConstraints: weatherFor(),
		TrafficImpact:      trafficFor(severity, area),
	}
}

// area returns the box area in m², or DefaultAreaSqm for unusable boxes:
// fewer than four coordinates, or any coordinate that is not finite or is
// beyond MaxPixelCoordinate.
func (e *Estimator) area(bbox []float64) decimal.Decimal {
	if len(bbox) < 4 {
		return decimal.NewFromFloat(DefaultAreaSqm)
	}
	for _, v := range bbox[:4] {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxPixelCoordinate {
			return decimal.NewFromFloat(DefaultAreaSqm)
		}
	}
	width := decimal.NewFromFloat(bbox[2]).Sub(decimal.NewFromFloat(bbox[0])).Abs()
	height := decimal.NewFromFloat(bbox[3]).Sub(decimal.NewFromFloat(bbox[1])).Abs()
	return width.Mul(e.pixelToMeter).Mul(height.Mul(e.pixelToMeter))
}

// ClassifySeverity derives severity from confidence, then escalates structural
// damage (alligator cracks and potholes) by area. Confidence below 0.4 is
// still minor.
func ClassifySeverity(damage schema.DamageType, confidence, areaSqm float64) schema.Severity {
	var severity schema.Severity
	switch {
	case confidence >= 0.8:
		severity = schema.Severe
	case confidence >= 0.6:
		severity = schema.Moderate
	default:
		severity = schema.Minor
	}

	if damage != schema.AlligatorCrack && damage != schema.Pothole {
		return severity
	}

	area := decimal.NewFromFloat(sanitize(areaSqm))
	switch {
	case area.GreaterThan(criticalAreaSqm):
		switch severity {
		case schema.Severe:
			return schema.Critical
		case schema.Moderate:
			return schema.Severe
		}
	case area.GreaterThan(moderateAreaSqm):
		if severity == schema.Minor {
			return schema.Moderate
		}
	}
	return severity
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func crewFor(severity schema.Severity, area decimal.Decimal) schema.CrewSize {
	total := baseCrew[severity]
	switch {
	case area.GreaterThan(largeCrewArea):
		total += 2
	case area.GreaterThan(mediumCrewArea):
		total++
	}

	roles := map[schema.CrewRole]int{schema.Supervisor: 1}
	if severity.AtLeast(schema.Severe) {
		roles[schema.EquipmentOperator] = boolInt(total >= 3)
		roles[schema.SkilledWorkers] = max(2, total-2)
		roles[schema.TrafficControl] = boolInt(total >= 4)
		roles[schema.SafetyOfficer] = boolInt(total >= 5)
	} else {
		roles[schema.SkilledWorkers] = total - 1
		roles[schema.TrafficControl] = boolInt(total >= 3)
	}
	return schema.CrewSize{Total: total, Roles: roles}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func equipmentFor(damage schema.DamageType, severity schema.Severity) []string {
	out := slices.Clone(baseEquipment)
	switch {
	case severity.AtLeast(schema.Severe) && (damage == schema.AlligatorCrack || damage == schema.Pothole):
		out = append(out, heavyPatching...)
	case severity.AtLeast(schema.Severe):
		out = append(out, heavySealing...)
	default:
		out = append(out, lightEquipment...)
	}
	return out
}

func safetyFor(severity schema.Severity) []string {
	out := slices.Clone(baseSafety)
	if severity.AtLeast(schema.Severe) {
		return append(out, heavySafety...)
	}
	return append(out, lightSafety...)
}

func weatherFor() schema.WeatherConstraints {
	return schema.WeatherConstraints{
		Temperature:   schema.TemperatureRange{MinF: 40, MaxF: 100, Optimal: "50-85°F"},
		Conditions:    slices.Clone(weatherConditions),
		SeasonalNotes: "Best performed in spring/summer/early fall",
	}
}

func trafficFor(severity schema.Severity, area decimal.Decimal) schema.TrafficImpact {
	if severity.AtLeast(schema.Severe) || area.GreaterThan(majorTrafficSqm) {
		return majorTraffic
	}
	return minorTraffic
}
