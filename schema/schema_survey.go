package schema

import "time"

// ImageResult is the outcome of processing one survey image.
type ImageResult struct {
	Path            string           `json:"path"`
	Filename        string           `json:"filename"`
	Status          ImageStatus      `json:"status"`
	Shape           ImageShape       `json:"image_shape"`
	Detections      []Detection      `json:"detections,omitempty"`
	Estimates       []DamageEstimate `json:"estimates,omitempty"`
	Location        *GeoPoint        `json:"gps_location,omitempty"`
	LocationLabel   string           `json:"location"`
	TotalRepairCost float64          `json:"total_repair_cost"`
	TotalRepairTime float64          `json:"total_repair_time_hours"`
	HighestPriority int              `json:"highest_priority,omitempty"`
	MostSevere      Severity         `json:"most_severe,omitempty"`
	Cached          bool             `json:"cached,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// SurveySummary holds the batch counters of a survey run.
type SurveySummary struct {
	FlightName           string             `json:"flight_name"`
	AreaName             string             `json:"area_name"`
	InputFolder          string             `json:"input_folder"`
	ProcessedAt          time.Time          `json:"processing_timestamp"`
	TotalImages          int                `json:"total_images"`
	DamagedImages        int                `json:"damaged_images"`
	CleanImages          int                `json:"clean_images"`
	ErrorImages          int                `json:"error_images"`
	DamagePercentage     float64            `json:"damage_percentage"`
	CleanPercentage      float64            `json:"clean_percentage"`
	TotalDamages         int                `json:"total_damages_detected"`
	DamageTypeStatistics map[DamageType]int `json:"damage_type_statistics"`
	AverageConfidence    float64            `json:"average_confidence"`
	ConfidenceThreshold  float64            `json:"confidence_threshold_used"`
}

// SurveyResult is everything a survey run produces.
type SurveyResult struct {
	RunID   string        `json:"run_id"`
	Summary SurveySummary `json:"summary"`
	Report  *AreaReport   `json:"area_report"`
	Images  []ImageResult `json:"images"`
}

// Estimates returns every estimate in image order.
func (s *SurveyResult) Estimates() []DamageEstimate {
	var out []DamageEstimate
	for _, img := range s.Images {
		out = append(out, img.Estimates...)
	}
	return out
}
