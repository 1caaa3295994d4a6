package schema

import "time"

// SummaryStatistics holds the headline numbers of an area report.
type SummaryStatistics struct {
	TotalImagesSurveyed          int     `json:"total_images_surveyed"`
	DamagedLocations             int     `json:"damaged_locations"`
	DamageRatePercentage         float64 `json:"damage_rate_percentage"`
	TotalDamagedAreaSqm          float64 `json:"total_damaged_area_sqm"`
	TotalRepairCost              float64 `json:"total_repair_cost"`
	TotalRepairTimeHours         float64 `json:"total_repair_time_hours"`
	EstimatedProjectDurationDays int     `json:"estimated_project_duration_days"`
}

// TimelinePhase is one priority band of the project timeline.
type TimelinePhase struct {
	Level        int    `json:"level"`
	Description  string `json:"description"`
	DurationDays int    `json:"duration_days"`
	Repairs      int    `json:"repairs"`
}

// ProjectTimeline splits the project into priority phases.
type ProjectTimeline struct {
	ImmediatePhase  TimelinePhase `json:"immediate_phase"`
	UrgentPhase     TimelinePhase `json:"urgent_phase"`
	ScheduledPhase  TimelinePhase `json:"scheduled_phase"`
	PreventivePhase TimelinePhase `json:"preventive_phase"`
	TotalDays       int           `json:"total_days"`
}

// Phases returns the phases in priority order.
func (t ProjectTimeline) Phases() []TimelinePhase {
	return []TimelinePhase{t.ImmediatePhase, t.UrgentPhase, t.ScheduledPhase, t.PreventivePhase}
}

// BudgetBreakdown splits the total repair cost into spending categories.
type BudgetBreakdown struct {
	Categories        map[BudgetCategory]float64 `json:"categories"`
	TotalBudget       float64                    `json:"total_budget"`
	CostPerSqmAverage float64                    `json:"cost_per_sqm_average"`
}

// ResourceRequirements is the union of resources needed across repairs.
type ResourceRequirements struct {
	PeakCrewSize          int      `json:"peak_crew_size"`
	TotalEquipmentTypes   int      `json:"total_equipment_types"`
	EquipmentList         []string `json:"equipment_list"`
	MaterialTypes         []string `json:"material_types"`
	EstimatedTrucksNeeded int      `json:"estimated_trucks_needed"`
	StorageRequirements   string   `json:"storage_requirements"`
}

// Recommendation is one prioritized action item.
type Recommendation struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason,omitempty"`
}

// ScheduledRepair is one repair placed on the maintenance calendar.
type ScheduledRepair struct {
	DamageType            DamageType `json:"damage_type"`
	Severity              Severity   `json:"severity"`
	EstimatedDurationDays int        `json:"estimated_duration"`
	Cost                  float64    `json:"cost"`
	CrewSize              int        `json:"crew_size"`
	SourceImage           string     `json:"source_image,omitempty"`
}

// RiskAssessment is the qualitative risk of leaving the area unrepaired.
type RiskAssessment struct {
	RiskLevel           RiskLevel `json:"risk_level"`
	RiskScore           int       `json:"risk_score"`
	RiskFactors         []string  `json:"risk_factors"`
	Mitigation          []string  `json:"mitigation_strategies"`
	MonitoringFrequency string    `json:"monitoring_frequency"`
}

// AreaReport is the aggregated condition report for a surveyed area.
// Clean areas carry NextInspection and GeneralMaintenance instead of the
// timeline, budget, resource, schedule and risk sections.
type AreaReport struct {
	AreaName             string                       `json:"area_name"`
	SurveyDate           time.Time                    `json:"survey_date"`
	OverallCondition     Condition                    `json:"overall_condition"`
	ConditionDescription string                       `json:"condition_description"`
	SummaryStatistics    SummaryStatistics            `json:"summary_statistics"`
	SeverityBreakdown    map[Severity]int             `json:"severity_breakdown"`
	DamageTypeBreakdown  map[DamageType]int           `json:"damage_type_breakdown"`
	PriorityBreakdown    map[int]int                  `json:"priority_breakdown"`
	ProjectTimeline      *ProjectTimeline             `json:"project_timeline,omitempty"`
	BudgetBreakdown      *BudgetBreakdown             `json:"budget_breakdown,omitempty"`
	ResourceRequirements *ResourceRequirements        `json:"resource_requirements,omitempty"`
	Recommendations      []Recommendation             `json:"recommendations"`
	MaintenanceSchedule  map[string][]ScheduledRepair `json:"maintenance_schedule"`
	RiskAssessment       *RiskAssessment              `json:"risk_assessment,omitempty"`
	NextInspection       string                       `json:"next_inspection,omitempty"`
	GeneralMaintenance   map[string]string            `json:"general_maintenance,omitempty"`
}

// TopRecommendations returns at most n recommendations in priority order.
func (r *AreaReport) TopRecommendations(n int) []Recommendation {
	if n < 0 || len(r.Recommendations) <= n {
		return r.Recommendations
	}
	return r.Recommendations[:n]
}

// IsClean reports whether the report was produced from zero damages.
func (r *AreaReport) IsClean() bool {
	return r.OverallCondition == Excellent
}
