// Package agg rolls damage estimates up into an area condition report.
package agg

import (
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/shopspring/decimal"
)

// UnknownArea is used when a survey carries neither an area nor a flight name.
const UnknownArea = "Unknown Area"

// NextInspectionDays is how far out a clean area's next inspection is scheduled.
const NextInspectionDays = 180

// Policy holds the tunable knobs of the aggregation.
type Policy struct {
	// Divisors applied to the summed repair days of priority levels 2, 3 and 4
	// to model crews working in parallel.
	UrgentDivisor     int
	ScheduledDivisor  int
	PreventiveDivisor int

	// BudgetSplit is the share of repair cost per category; shares sum to 1.
	BudgetSplit map[schema.BudgetCategory]float64
}

// DefaultPolicy returns the standard parallelism and budget assumptions.
func DefaultPolicy() Policy {
	return Policy{
		UrgentDivisor:     2,
		ScheduledDivisor:  3,
		PreventiveDivisor: 4,
		BudgetSplit: map[schema.BudgetCategory]float64{
			schema.MaterialsBudget:      0.40,
			schema.LaborBudget:          0.35,
			schema.EquipmentBudget:      0.15,
			schema.TrafficControlBudget: 0.05,
			schema.ContingencyBudget:    0.05,
		},
	}
}

// Aggregator builds area reports. It is stateless apart from its clock and policy.
type Aggregator struct {
	clock  contract.Clock
	policy Policy
}

// NewAggregator returns an Aggregator; a nil clock means the system clock.
func NewAggregator(clock contract.Clock, policy Policy) *Aggregator {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	def := DefaultPolicy()
	if policy.UrgentDivisor <= 0 {
		policy.UrgentDivisor = def.UrgentDivisor
	}
	if policy.ScheduledDivisor <= 0 {
		policy.ScheduledDivisor = def.ScheduledDivisor
	}
	if policy.PreventiveDivisor <= 0 {
		policy.PreventiveDivisor = def.PreventiveDivisor
	}
	if len(policy.BudgetSplit) == 0 {
		policy.BudgetSplit = def.BudgetSplit
	}
	return &Aggregator{clock: clock, policy: policy}
}

// Summarize aggregates all estimates of one area. totalImages is the number of
// images surveyed, damaged or not. An empty estimate list yields the clean report.
func (a *Aggregator) Summarize(areaName string, estimates []schema.DamageEstimate, totalImages int) *schema.AreaReport {
	if areaName == "" {
		areaName = UnknownArea
	}
	now := a.clock.Now()
	if len(estimates) == 0 {
		return cleanReport(areaName, totalImages, now)
	}

	severities := make(map[schema.Severity]int)
	damageTypes := make(map[schema.DamageType]int)
	priorities := make(map[int]int)
	var totalCost, totalHours, totalArea decimal.Decimal
	for _, est := range estimates {
		severities[est.Severity]++
		damageTypes[est.DamageType]++
		priorities[est.Priority.Level]++
		totalCost = totalCost.Add(decimal.NewFromFloat(est.RepairCost))
		totalHours = totalHours.Add(decimal.NewFromFloat(est.RepairTimeHours))
		totalArea = totalArea.Add(decimal.NewFromFloat(est.AreaSqm))
	}

	condition, description := overallCondition(severities, len(estimates))
	timeline := a.projectTimeline(estimates)

	return &schema.AreaReport{
		AreaName:             areaName,
		SurveyDate:           now,
		OverallCondition:     condition,
		ConditionDescription: description,
		SummaryStatistics: schema.SummaryStatistics{
			TotalImagesSurveyed:          totalImages,
			DamagedLocations:             len(estimates),
			DamageRatePercentage:         damageRate(len(estimates), totalImages),
			TotalDamagedAreaSqm:          totalArea.Round(2).InexactFloat64(),
			TotalRepairCost:              totalCost.Round(2).InexactFloat64(),
			TotalRepairTimeHours:         totalHours.Round(2).InexactFloat64(),
			EstimatedProjectDurationDays: timeline.TotalDays,
		},
		SeverityBreakdown:    severities,
		DamageTypeBreakdown:  damageTypes,
		PriorityBreakdown:    priorities,
		ProjectTimeline:      timeline,
		BudgetBreakdown:      a.budget(estimates, totalArea),
		ResourceRequirements: resources(estimates),
		Recommendations:      recommendations(estimates, severities),
		MaintenanceSchedule:  maintenanceSchedule(estimates, now),
		RiskAssessment:       assessRisk(estimates),
	}
}

// overallCondition applies the first matching rule: any critical, more than
// two severe, any severe or more than five damages, otherwise good.
func overallCondition(severities map[schema.Severity]int, n int) (schema.Condition, string) {
	switch {
	case severities[schema.Critical] > 0:
		return schema.CriticalState, "Immediate attention required"
	case severities[schema.Severe] > 2:
		return schema.Poor, "Urgent repairs needed"
	case severities[schema.Severe] > 0 || n > 5:
		return schema.Fair, "Scheduled maintenance required"
	default:
		return schema.Good, "Minor maintenance needed"
	}
}

// damageRate is the share of images with damage, one decimal. A survey with
// no images reports 0 rather than dividing by zero.
func damageRate(damaged, totalImages int) float64 {
	if totalImages <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(damaged)).
		Div(decimal.NewFromInt(int64(totalImages))).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		InexactFloat64()
}
