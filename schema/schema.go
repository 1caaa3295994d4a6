// Package schema has the models and enumerations shared by all parts of roadsurvey.
package schema

// Detection is one damage instance reported by a detector for an image.
// BBox holds pixel coordinates [x1, y1, x2, y2]; it may be malformed.
type Detection struct {
	DamageType DamageType `json:"damage_type"`
	Confidence float64    `json:"confidence"`
	BBox       []float64  `json:"bbox"`
}

// ImageShape is the pixel geometry of an image.
type ImageShape struct {
	Height   int `json:"height"`
	Width    int `json:"width"`
	Channels int `json:"channels"`
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Priority describes how soon a repair must happen.
type Priority struct {
	Level    int    `json:"level"`
	Action   string `json:"action"`
	Timeline string `json:"timeline"`
	Risk     string `json:"risk"`
}

// CrewSize is the crew headcount and its role breakdown.
type CrewSize struct {
	Total int              `json:"total"`
	Roles map[CrewRole]int `json:"roles"`
}

// TemperatureRange is the workable temperature window in Fahrenheit.
type TemperatureRange struct {
	MinF    int    `json:"min_f"`
	MaxF    int    `json:"max_f"`
	Optimal string `json:"optimal"`
}

// WeatherConstraints lists the weather needed to perform a repair.
type WeatherConstraints struct {
	Temperature   TemperatureRange `json:"temperature"`
	Conditions    []string         `json:"conditions"`
	SeasonalNotes string           `json:"seasonal_notes"`
}

// TrafficImpact describes the disruption a repair causes.
type TrafficImpact struct {
	LaneClosure          string `json:"lane_closure"`
	Duration             string `json:"duration"`
	TrafficControl       string `json:"traffic_control"`
	AlternateRoute       string `json:"alternate_route"`
	PeakHourRestrictions string `json:"peak_hour_restrictions"`
}

// DamageEstimate is the repair estimate for a single detection.
// Monetary and area values are rounded to 2 decimals.
type DamageEstimate struct {
	DamageType         DamageType         `json:"damage_type"`
	Severity           Severity           `json:"severity"`
	Confidence         float64            `json:"confidence"`
	AreaSqm            float64            `json:"area_sqm"`
	BBox               []float64          `json:"bbox"`
	RepairCost         float64            `json:"repair_cost"`
	RepairTimeHours    float64            `json:"repair_time_hours"`
	RepairDays         int                `json:"repair_days"`
	Priority           Priority           `json:"priority"`
	RepairMethod       string             `json:"repair_method"`
	MaterialsNeeded    string             `json:"materials_needed"`
	CrewSize           CrewSize           `json:"crew_size"`
	EquipmentNeeded    []string           `json:"equipment_needed"`
	SafetyRequirements []string           `json:"safety_requirements"`
	WeatherConstraints WeatherConstraints `json:"weather_constraints"`
	TrafficImpact      TrafficImpact      `json:"traffic_impact"`

	// Set by the survey orchestrator, empty for ad-hoc estimates.
	SourceImage string    `json:"source_image,omitempty"`
	Location    *GeoPoint `json:"gps_location,omitempty"`
}
