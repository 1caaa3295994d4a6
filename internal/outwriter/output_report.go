package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/roadsurvey/core/agg"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReportResult outputs an area report, dispatching based on the output format configured.
func WriteReportResult(report *schema.AreaReport, cfg *contract.Config) error {
	fmtFloat, fmtMoney := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"section", "key", "value"}, func(cw *csv.Writer) error {
				return cw.WriteAll(reportRecords(report, fmtFloat, fmtMoney))
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for area reports. Use json or csv")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, report, fmtFloat, fmtMoney)
		}, "Wrote report")
	}
}

// reportRecords flattens a report into section/key/value rows. Map-backed
// sections are emitted in a stable order.
func reportRecords(report *schema.AreaReport, fmtFloat, fmtMoney func(float64) string) [][]string {
	stats := report.SummaryStatistics
	rows := [][]string{
		{"area", "name", report.AreaName},
		{"area", "survey_date", report.SurveyDate.Format(contract.DateTimeFormat)},
		{"area", "overall_condition", string(report.OverallCondition)},
		{"area", "condition_description", report.ConditionDescription},
		{"summary", "total_images_surveyed", strconv.Itoa(stats.TotalImagesSurveyed)},
		{"summary", "damaged_locations", strconv.Itoa(stats.DamagedLocations)},
		{"summary", "damage_rate_percentage", fmtFloat(stats.DamageRatePercentage)},
		{"summary", "total_damaged_area_sqm", fmtMoney(stats.TotalDamagedAreaSqm)},
		{"summary", "total_repair_cost", fmtMoney(stats.TotalRepairCost)},
		{"summary", "total_repair_time_hours", fmtMoney(stats.TotalRepairTimeHours)},
		{"summary", "estimated_project_duration_days", strconv.Itoa(stats.EstimatedProjectDurationDays)},
	}

	for _, sev := range schema.AllSeverities {
		if n, ok := report.SeverityBreakdown[sev]; ok {
			rows = append(rows, []string{"severity", string(sev), strconv.Itoa(n)})
		}
	}
	for _, dt := range sortedDamageTypes(report.DamageTypeBreakdown) {
		rows = append(rows, []string{"damage_type", string(dt), strconv.Itoa(report.DamageTypeBreakdown[dt])})
	}
	if report.BudgetBreakdown != nil {
		for _, cat := range schema.AllBudgetCategories {
			rows = append(rows, []string{"budget", string(cat), fmtMoney(report.BudgetBreakdown.Categories[cat])})
		}
		rows = append(rows,
			[]string{"budget", "total_budget", fmtMoney(report.BudgetBreakdown.TotalBudget)},
			[]string{"budget", "cost_per_sqm_average", fmtMoney(report.BudgetBreakdown.CostPerSqmAverage)},
		)
	}
	if report.ProjectTimeline != nil {
		for _, phase := range report.ProjectTimeline.Phases() {
			rows = append(rows, []string{"timeline", fmt.Sprintf("phase_%d_days", phase.Level), strconv.Itoa(phase.DurationDays)})
		}
		rows = append(rows, []string{"timeline", "total_days", strconv.Itoa(report.ProjectTimeline.TotalDays)})
	}
	for _, rec := range report.TopRecommendations(agg.MaxDisplayedRecommendations) {
		rows = append(rows, []string{"recommendation", rec.Priority, rec.Action})
	}
	if report.RiskAssessment != nil {
		rows = append(rows,
			[]string{"risk", "level", string(report.RiskAssessment.RiskLevel)},
			[]string{"risk", "score", strconv.Itoa(report.RiskAssessment.RiskScore)},
			[]string{"risk", "monitoring_frequency", report.RiskAssessment.MonitoringFrequency},
		)
	}
	if report.NextInspection != "" {
		rows = append(rows, []string{"maintenance", "next_inspection", report.NextInspection})
	}
	for _, key := range sortedKeys(report.GeneralMaintenance) {
		rows = append(rows, []string{"maintenance", key, report.GeneralMaintenance[key]})
	}
	return rows
}

// writeReportText renders the human-readable area report.
func writeReportText(w io.Writer, report *schema.AreaReport, fmtFloat, fmtMoney func(float64) string) error {
	stats := report.SummaryStatistics
	if _, err := fmt.Fprintf(w, "Area: %s\nCondition: %s (%s)\nSurvey date: %s\n\n",
		report.AreaName,
		contract.GetConditionLabel(report.OverallCondition),
		report.ConditionDescription,
		report.SurveyDate.Format(contract.DateTimeFormat)); err != nil {
		return err
	}

	summary := [][]string{
		{"Images surveyed", strconv.Itoa(stats.TotalImagesSurveyed)},
		{"Damaged locations", strconv.Itoa(stats.DamagedLocations)},
		{"Damage rate (%)", fmtFloat(stats.DamageRatePercentage)},
		{"Damaged area (m²)", fmtMoney(stats.TotalDamagedAreaSqm)},
		{"Repair cost ($)", fmtMoney(stats.TotalRepairCost)},
		{"Repair time (h)", fmtMoney(stats.TotalRepairTimeHours)},
		{"Project duration (days)", strconv.Itoa(stats.EstimatedProjectDurationDays)},
	}
	if err := renderTable(w, []string{"Metric", "Value"}, summary); err != nil {
		return err
	}

	if report.IsClean() {
		if _, err := fmt.Fprintf(w, "Next inspection: %s\n", report.NextInspection); err != nil {
			return err
		}
		for _, key := range sortedKeys(report.GeneralMaintenance) {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", key, report.GeneralMaintenance[key]); err != nil {
				return err
			}
		}
	} else {
		if err := writeBreakdowns(w, report, fmtMoney); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "Recommendations:"); err != nil {
		return err
	}
	for _, rec := range report.TopRecommendations(agg.MaxDisplayedRecommendations) {
		if _, err := fmt.Fprintf(w, "  [%s] %s\n", rec.Priority, rec.Action); err != nil {
			return err
		}
	}

	if risk := report.RiskAssessment; risk != nil {
		if _, err := fmt.Fprintf(w, "Risk: %s (score %d), monitor %s\n",
			contract.GetRiskLabel(risk.RiskLevel), risk.RiskScore, risk.MonitoringFrequency); err != nil {
			return err
		}
	}
	return nil
}

// writeBreakdowns prints the severity, budget and timeline tables of a damaged area.
func writeBreakdowns(w io.Writer, report *schema.AreaReport, fmtMoney func(float64) string) error {
	var severities [][]string
	for _, sev := range slices.Backward(schema.AllSeverities) {
		if n := report.SeverityBreakdown[sev]; n > 0 {
			severities = append(severities, []string{contract.GetColorLabel(sev), strconv.Itoa(n)})
		}
	}
	if err := renderTable(w, []string{"Severity", "Count"}, severities); err != nil {
		return err
	}

	if budget := report.BudgetBreakdown; budget != nil {
		var rows [][]string
		for _, cat := range schema.AllBudgetCategories {
			rows = append(rows, []string{string(cat), fmtMoney(budget.Categories[cat])})
		}
		rows = append(rows, []string{"total", fmtMoney(budget.TotalBudget)})
		if err := renderTable(w, []string{"Budget", "Amount ($)"}, rows); err != nil {
			return err
		}
	}

	if timeline := report.ProjectTimeline; timeline != nil {
		var rows [][]string
		for _, phase := range timeline.Phases() {
			rows = append(rows, []string{phase.Description, strconv.Itoa(phase.Repairs), strconv.Itoa(phase.DurationDays)})
		}
		rows = append(rows, []string{"Total", "", strconv.Itoa(timeline.TotalDays)})
		if err := renderTable(w, []string{"Phase", "Repairs", "Days"}, rows); err != nil {
			return err
		}
	}
	return nil
}

// renderTable prints a small left-aligned table.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func sortedDamageTypes(counts map[schema.DamageType]int) []schema.DamageType {
	keys := make([]schema.DamageType, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
