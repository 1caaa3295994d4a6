package schema

import "time"

// SurveyRunRecord represents a row from the roadsurvey_runs table.
type SurveyRunRecord struct {
	SurveyID      int64
	RunUUID       string
	AreaName      string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalImages   int32
	DamagedImages *int32
	TotalCost     *float64
	OverallStatus *string
	ConfigParams  *string
}

// ImageRecord represents a row from the roadsurvey_images table.
type ImageRecord struct {
	SurveyID    int64
	ImagePath   string
	Status      string
	DamageCount int32
	TotalCost   float64
	Latitude    *float64
	Longitude   *float64
	ErrorText   *string
	RecordedAt  time.Time
}

// EstimateRecord represents a row from the roadsurvey_estimates table.
type EstimateRecord struct {
	SurveyID        int64
	ImagePath       string
	DamageType      string
	Severity        string
	Confidence      float64
	AreaSqm         float64
	RepairCost      float64
	RepairTimeHours float64
	RepairDays      int32
	PriorityLevel   int32
	CrewSize        int32
}
