package agg

import (
	"fmt"
	"time"

	"github.com/huangsam/roadsurvey/schema"
)

// MaxDisplayedRecommendations is how many recommendations consumers show.
const MaxDisplayedRecommendations = 5

// maxRiskFactors caps the factors listed in a risk assessment.
const maxRiskFactors = 5

// scheduleOffsetDays maps a priority level to its start offset from now.
var scheduleOffsetDays = map[int]int{1: 1, 2: 7, 3: 30, 4: 90}

var riskWeights = map[schema.Severity]int{
	schema.Critical: 4,
	schema.Severe:   3,
	schema.Moderate: 2,
	schema.Minor:    1,
}

var mitigationByRisk = map[schema.RiskLevel][]string{
	schema.VeryHighRisk: highMitigation,
	schema.HighRisk:     highMitigation,
	schema.MediumRisk: {
		"Schedule repairs within recommended timeframes",
		"Monitor high-risk areas weekly",
		"Prepare contingency repair materials",
		"Plan traffic management during repairs",
	},
	schema.LowRisk: {
		"Continue regular monitoring",
		"Schedule preventive maintenance",
		"Document baseline conditions",
	},
}

var highMitigation = []string{
	"Implement immediate traffic control measures",
	"Post warning signs for hazardous areas",
	"Consider temporary road closure if necessary",
	"Expedite critical repairs",
	"Increase inspection frequency",
}

var monitoringByRisk = map[schema.RiskLevel]string{
	schema.VeryHighRisk: "Weekly",
	schema.HighRisk:     "Bi-weekly",
	schema.MediumRisk:   "Monthly",
	schema.LowRisk:      "Quarterly",
}

// recommendations returns action items in fixed priority order; the
// preventive item is always present and always last.
func recommendations(estimates []schema.DamageEstimate, severities map[schema.Severity]int) []schema.Recommendation {
	var out []schema.Recommendation

	if n := severities[schema.Critical]; n > 0 {
		out = append(out, schema.Recommendation{
			Priority: "IMMEDIATE",
			Action:   fmt.Sprintf("Address %d critical damage(s) within 24-48 hours", n),
			Reason:   "Safety hazard - risk of accidents or further deterioration",
		})
	}
	if n := severities[schema.Severe]; n > 0 {
		out = append(out, schema.Recommendation{
			Priority: "URGENT",
			Action:   fmt.Sprintf("Schedule %d severe repair(s) within 1-2 weeks", n),
			Reason:   "Prevent escalation to critical condition",
		})
	}

	alligator := 0
	for _, est := range estimates {
		if est.DamageType == schema.AlligatorCrack {
			alligator++
		}
	}
	if alligator > 2 {
		out = append(out, schema.Recommendation{
			Priority: "STRATEGIC",
			Action:   "Consider full section overlay due to multiple alligator cracks",
			Reason:   "Multiple alligator cracks indicate structural issues",
		})
	}
	if len(estimates) > 10 {
		out = append(out, schema.Recommendation{
			Priority: "PLANNING",
			Action:   "Develop comprehensive rehabilitation plan",
			Reason:   "High damage density suggests systematic approach needed",
		})
	}

	return append(out, schema.Recommendation{
		Priority: "PREVENTIVE",
		Action:   "Implement regular inspection schedule every 6 months",
		Reason:   "Early detection prevents costly major repairs",
	})
}

// WeekKey formats t as an ISO year-week key such as "2025-W07".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// maintenanceSchedule buckets repairs by the ISO week they should start in.
// Entries within a bucket keep input order.
func maintenanceSchedule(estimates []schema.DamageEstimate, now time.Time) map[string][]schema.ScheduledRepair {
	schedule := make(map[string][]schema.ScheduledRepair)
	for _, est := range estimates {
		offset, ok := scheduleOffsetDays[est.Priority.Level]
		if !ok {
			offset = scheduleOffsetDays[4]
		}
		key := WeekKey(now.AddDate(0, 0, offset))
		schedule[key] = append(schedule[key], schema.ScheduledRepair{
			DamageType:            est.DamageType,
			Severity:              est.Severity,
			EstimatedDurationDays: est.RepairDays,
			Cost:                  est.RepairCost,
			CrewSize:              est.CrewSize.Total,
			SourceImage:           est.SourceImage,
		})
	}
	return schedule
}

// assessRisk scores each damage by severity and maps the sum to a level.
func assessRisk(estimates []schema.DamageEstimate) *schema.RiskAssessment {
	score := 0
	var factors []string
	for _, est := range estimates {
		score += riskWeights[est.Severity]
		if est.Severity.AtLeast(schema.Severe) && len(factors) < maxRiskFactors {
			factors = append(factors, fmt.Sprintf("%s %s", est.Severity.Title(), est.DamageType))
		}
	}

	level := RiskLevelFor(score)
	return &schema.RiskAssessment{
		RiskLevel:           level,
		RiskScore:           score,
		RiskFactors:         factors,
		Mitigation:          mitigationByRisk[level],
		MonitoringFrequency: monitoringByRisk[level],
	}
}

// RiskLevelFor maps a risk score to its level.
func RiskLevelFor(score int) schema.RiskLevel {
	switch {
	case score >= 15:
		return schema.VeryHighRisk
	case score >= 10:
		return schema.HighRisk
	case score >= 5:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}

// cleanReport is the terminal report for an area without damage.
func cleanReport(areaName string, totalImages int, now time.Time) *schema.AreaReport {
	return &schema.AreaReport{
		AreaName:             areaName,
		SurveyDate:           now,
		OverallCondition:     schema.Excellent,
		ConditionDescription: "No damage detected - road in excellent condition",
		SummaryStatistics: schema.SummaryStatistics{
			TotalImagesSurveyed: totalImages,
		},
		SeverityBreakdown:   map[schema.Severity]int{},
		DamageTypeBreakdown: map[schema.DamageType]int{},
		PriorityBreakdown:   map[int]int{},
		Recommendations: []schema.Recommendation{
			{Priority: "ROUTINE", Action: "Continue regular monitoring"},
			{Priority: "ROUTINE", Action: "Schedule preventive maintenance in 6-12 months"},
			{Priority: "ROUTINE", Action: "Monitor for early signs of wear"},
			{Priority: "ROUTINE", Action: "Maintain current maintenance practices"},
		},
		MaintenanceSchedule: map[string][]schema.ScheduledRepair{},
		NextInspection:      now.AddDate(0, 0, NextInspectionDays).Format(time.DateOnly),
		GeneralMaintenance: map[string]string{
			"preventive_sealing": "12-18 months",
			"crack_monitoring":   "6 months",
			"surface_treatment":  "3-5 years",
		},
	}
}
