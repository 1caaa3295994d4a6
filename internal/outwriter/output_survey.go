package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/parquet"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSurveyResults outputs a survey result, dispatching based on the output format configured.
func WriteSurveyResults(result *schema.SurveyResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtMoney := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSurveyCSV(w, result, fmtFloat, fmtMoney)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, parquet.EstimatesFromSurvey(result))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSurveyTable(w, result, cfg, fmtFloat, fmtMoney, duration)
		}, "Wrote table")
	}
	return nil
}

// surveyCSVHeader prefixes the estimate columns with image columns.
var surveyCSVHeader = append([]string{"image", "status", "latitude", "longitude"}, estimateColumns...)

// writeSurveyCSV writes one row per estimate. Clean and failed images get a
// single row with empty estimate columns so every image is accounted for.
func writeSurveyCSV(w io.Writer, result *schema.SurveyResult, fmtFloat, fmtMoney func(float64) string) error {
	return writeCSVWithHeader(w, surveyCSVHeader, func(cw *csv.Writer) error {
		for _, img := range result.Images {
			prefix := []string{img.Path, string(img.Status), "", ""}
			if img.Location != nil {
				prefix[2] = strconv.FormatFloat(img.Location.Latitude, 'f', -1, 64)
				prefix[3] = strconv.FormatFloat(img.Location.Longitude, 'f', -1, 64)
			}
			if len(img.Estimates) == 0 {
				if err := cw.Write(append(prefix, make([]string, len(estimateColumns))...)); err != nil {
					return err
				}
				continue
			}
			for _, est := range img.Estimates {
				row := append(append([]string{}, prefix...), estimateFields(est, fmtFloat, fmtMoney)...)
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeSurveyTable prints the per-image table, the batch counters and the area report.
func writeSurveyTable(w io.Writer, result *schema.SurveyResult, cfg *contract.Config, fmtFloat, fmtMoney func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Image", "Status", "Damages", "Most Severe", "Cost ($)", "Hours", "Priority", "Location"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	shown := min(len(result.Images), cfg.Limit)
	var data [][]string
	for i, img := range result.Images[:shown] {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(img.Path, pathWidth),
			statusLabel(img.Status),
			strconv.Itoa(len(img.Estimates)),
			"-",
			fmtMoney(img.TotalRepairCost),
			fmtMoney(img.TotalRepairTime),
			"-",
			contract.TruncatePath(img.LocationLabel, locationWidth),
		}
		if img.MostSevere != "" {
			row[4] = contract.GetColorLabel(img.MostSevere)
		}
		if img.HighestPriority > 0 {
			row[7] = strconv.Itoa(img.HighestPriority)
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := result.Summary
	if _, err := fmt.Fprintf(w, "Showing %d of %d images (damaged: %d, clean: %d, errors: %d)\n",
		shown, s.TotalImages, s.DamagedImages, s.CleanImages, s.ErrorImages); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Damage rate: %s%% | Detections: %d | Avg confidence: %s | Threshold: %s\n",
		fmtFloat(s.DamagePercentage), s.TotalDamages, fmtFloat(s.AverageConfidence), fmtFloat(s.ConfidenceThreshold)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Survey %s completed in %v with %d workers. Cache backend: %s\n\n",
		result.RunID, duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}

	if result.Report == nil {
		return nil
	}
	return writeReportText(w, result.Report, fmtFloat, fmtMoney)
}

func statusLabel(status schema.ImageStatus) string {
	switch status {
	case schema.DamagedImage:
		return contract.HighColor.Sprint(string(status))
	case schema.ErrorImage:
		return contract.CriticalColor.Sprint(string(status))
	default:
		return contract.GoodColor.Sprint(string(status))
	}
}
