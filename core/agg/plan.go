package agg

import (
	"slices"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/shopspring/decimal"
)

// Trucks and storage scale with the number of repairs.
const (
	repairsPerTruck     = 5
	mediumStorageRepair = 10
)

var phaseDescriptions = [4]string{
	"Critical repairs - safety hazards",
	"Urgent repairs - prevent deterioration",
	"Scheduled maintenance",
	"Preventive maintenance",
}

// projectTimeline groups repairs by priority level. Level 1 runs as long as
// its longest repair; levels 2-4 sum their repair days and divide by the
// policy divisors to account for parallel crews.
func (a *Aggregator) projectTimeline(estimates []schema.DamageEstimate) *schema.ProjectTimeline {
	var (
		counts  [4]int
		sums    [4]int
		longest int
	)
	for _, est := range estimates {
		idx := min(max(est.Priority.Level, 1), 4) - 1
		counts[idx]++
		sums[idx] += est.RepairDays
		if idx == 0 {
			longest = max(longest, est.RepairDays)
		}
	}

	durations := [4]int{
		longest,
		sums[1] / a.policy.UrgentDivisor,
		sums[2] / a.policy.ScheduledDivisor,
		sums[3] / a.policy.PreventiveDivisor,
	}

	var phases [4]schema.TimelinePhase
	total := 0
	for i := range phases {
		phases[i] = schema.TimelinePhase{
			Level:        i + 1,
			Description:  phaseDescriptions[i],
			DurationDays: durations[i],
			Repairs:      counts[i],
		}
		total += durations[i]
	}

	return &schema.ProjectTimeline{
		ImmediatePhase:  phases[0],
		UrgentPhase:     phases[1],
		ScheduledPhase:  phases[2],
		PreventivePhase: phases[3],
		TotalDays:       max(total, 1),
	}
}

// budget splits every repair cost across the policy categories. Categories
// and the total are rounded independently, so they agree within a cent per
// category.
func (a *Aggregator) budget(estimates []schema.DamageEstimate, totalArea decimal.Decimal) *schema.BudgetBreakdown {
	shares := make(map[schema.BudgetCategory]decimal.Decimal, len(a.policy.BudgetSplit))
	for cat, pct := range a.policy.BudgetSplit {
		shares[cat] = decimal.NewFromFloat(pct)
	}

	sums := make(map[schema.BudgetCategory]decimal.Decimal, len(shares))
	for _, est := range estimates {
		cost := decimal.NewFromFloat(est.RepairCost)
		for cat, share := range shares {
			sums[cat] = sums[cat].Add(cost.Mul(share))
		}
	}

	categories := make(map[schema.BudgetCategory]float64, len(sums))
	total := decimal.Zero
	for cat := range shares {
		categories[cat] = sums[cat].Round(2).InexactFloat64()
		total = total.Add(sums[cat])
	}

	divisor := decimal.Max(totalArea, decimal.NewFromInt(1))
	return &schema.BudgetBreakdown{
		Categories:        categories,
		TotalBudget:       total.Round(2).InexactFloat64(),
		CostPerSqmAverage: total.Div(divisor).Round(2).InexactFloat64(),
	}
}

// resources unions equipment and materials across repairs. Lists are sorted so
// reports are reproducible.
func resources(estimates []schema.DamageEstimate) *schema.ResourceRequirements {
	peak := 0
	equipment := make(map[string]struct{})
	materials := make(map[string]struct{})
	for _, est := range estimates {
		peak = max(peak, est.CrewSize.Total)
		for _, item := range est.EquipmentNeeded {
			equipment[item] = struct{}{}
		}
		if est.MaterialsNeeded != "" {
			materials[est.MaterialsNeeded] = struct{}{}
		}
	}

	storage := "Small"
	if len(estimates) > mediumStorageRepair {
		storage = "Medium"
	}

	equipmentList := sortedKeys(equipment)
	return &schema.ResourceRequirements{
		PeakCrewSize:          peak,
		TotalEquipmentTypes:   len(equipmentList),
		EquipmentList:         equipmentList,
		MaterialTypes:         sortedKeys(materials),
		EstimatedTrucksNeeded: (len(estimates) + repairsPerTruck - 1) / repairsPerTruck,
		StorageRequirements:   storage,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
