package core

import (
	"math"
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// rollupImage fills the per-image totals from its estimates.
func rollupImage(result *schema.ImageResult) {
	cost, hours := decimal.Zero, decimal.Zero
	for _, est := range result.Estimates {
		cost = cost.Add(decimal.NewFromFloat(est.RepairCost))
		hours = hours.Add(decimal.NewFromFloat(est.RepairTimeHours))
		if result.HighestPriority == 0 || est.Priority.Level < result.HighestPriority {
			result.HighestPriority = est.Priority.Level
		}
		if est.Severity.Rank() > result.MostSevere.Rank() {
			result.MostSevere = est.Severity
		}
	}
	result.TotalRepairCost = cost.Round(2).InexactFloat64()
	result.TotalRepairTime = hours.Round(2).InexactFloat64()
}

// percentage returns part/total as a percentage with one decimal, 0 for an
// empty total.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(1).InexactFloat64()
}

// buildSummary computes the batch counters over all image results.
func buildSummary(cfg *contract.Config, areaName string, results []schema.ImageResult, processedAt time.Time) schema.SurveySummary {
	summary := schema.SurveySummary{
		FlightName:           cfg.FlightName,
		AreaName:             areaName,
		InputFolder:          cfg.InputDir,
		ProcessedAt:          processedAt,
		TotalImages:          len(results),
		DamageTypeStatistics: make(map[schema.DamageType]int),
		ConfidenceThreshold:  cfg.ConfidenceThreshold,
	}

	confidence := decimal.Zero
	scored := 0
	for _, r := range results {
		switch r.Status {
		case schema.DamagedImage:
			summary.DamagedImages++
		case schema.CleanImage:
			summary.CleanImages++
		default:
			summary.ErrorImages++
		}
		for _, det := range r.Detections {
			summary.TotalDamages++
			summary.DamageTypeStatistics[det.DamageType]++
			if math.IsNaN(det.Confidence) || math.IsInf(det.Confidence, 0) {
				continue
			}
			confidence = confidence.Add(decimal.NewFromFloat(det.Confidence))
			scored++
		}
	}

	summary.DamagePercentage = percentage(summary.DamagedImages, summary.TotalImages)
	summary.CleanPercentage = percentage(summary.CleanImages, summary.TotalImages)
	if scored > 0 {
		summary.AverageConfidence = confidence.Div(decimal.NewFromInt(int64(scored))).Round(3).InexactFloat64()
	}
	return summary
}
