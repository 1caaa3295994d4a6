package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/parquet"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// estimateColumns are shared by the estimate and survey CSV writers.
var estimateColumns = []string{
	"damage_type",
	"severity",
	"confidence",
	"area_sqm",
	"repair_cost",
	"repair_time_hours",
	"repair_days",
	"priority",
	"crew_size",
	"repair_method",
}

// estimateFields renders est in estimateColumns order.
func estimateFields(est schema.DamageEstimate, fmtFloat, fmtMoney func(float64) string) []string {
	return []string{
		string(est.DamageType),
		contract.GetPlainLabel(est.Severity),
		fmtFloat(est.Confidence),
		fmtMoney(est.AreaSqm),
		fmtMoney(est.RepairCost),
		fmtMoney(est.RepairTimeHours),
		strconv.Itoa(est.RepairDays),
		strconv.Itoa(est.Priority.Level),
		strconv.Itoa(est.CrewSize.Total),
		est.RepairMethod,
	}
}

// WriteEstimateResult outputs one estimate, dispatching based on the output format configured.
func WriteEstimateResult(est schema.DamageEstimate, cfg *contract.Config) error {
	fmtFloat, fmtMoney := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, est)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, estimateColumns, func(cw *csv.Writer) error {
				return cw.Write(estimateFields(est, fmtFloat, fmtMoney))
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, []parquet.Estimate{parquet.EstimateRow("", est)})
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEstimateTable(w, est, fmtFloat, fmtMoney)
		}, "Wrote table")
	}
}

// writeEstimateTable prints a two-column field/value table for one estimate.
func writeEstimateTable(w io.Writer, est schema.DamageEstimate, fmtFloat, fmtMoney func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := [][]string{
		{"Damage Type", est.DamageType.DisplayName()},
		{"Severity", contract.GetColorLabel(est.Severity)},
		{"Confidence", fmtFloat(est.Confidence)},
		{"Area (m²)", fmtMoney(est.AreaSqm)},
		{"Repair Cost ($)", fmtMoney(est.RepairCost)},
		{"Repair Time (h)", fmtMoney(est.RepairTimeHours)},
		{"Repair Days", strconv.Itoa(est.RepairDays)},
		{"Priority", fmt.Sprintf("%d - %s (%s)", est.Priority.Level, est.Priority.Action, est.Priority.Timeline)},
		{"Method", est.RepairMethod},
		{"Materials", est.MaterialsNeeded},
		{"Crew", strconv.Itoa(est.CrewSize.Total)},
		{"Equipment", strings.Join(est.EquipmentNeeded, ", ")},
		{"Safety", strings.Join(est.SafetyRequirements, ", ")},
		{"Lane Closure", est.TrafficImpact.LaneClosure},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
