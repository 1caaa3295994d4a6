// Package parquet exports survey history and survey results to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/roadsurvey/schema"
	"github.com/parquet-go/parquet-go"
)

// SurveyRun maps to the roadsurvey_runs table.
type SurveyRun struct {
	SurveyID      int64      `parquet:"survey_id,snappy"`
	RunUUID       string     `parquet:"run_uuid,snappy"`
	AreaName      string     `parquet:"area_name,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalImages   int32      `parquet:"total_images,snappy"`
	DamagedImages *int32     `parquet:"damaged_images,optional,snappy"`
	TotalCost     *float64   `parquet:"total_cost,optional,snappy"`
	OverallStatus *string    `parquet:"overall_status,optional,snappy"`
	ConfigParams  *string    `parquet:"config_params,optional,snappy"`
}

// Image maps to the roadsurvey_images table.
type Image struct {
	SurveyID    int64     `parquet:"survey_id,snappy"`
	ImagePath   string    `parquet:"image_path,snappy"`
	Status      string    `parquet:"status,snappy,dict"`
	DamageCount int32     `parquet:"damage_count,snappy"`
	TotalCost   float64   `parquet:"total_cost,snappy"`
	Latitude    *float64  `parquet:"latitude,optional,snappy"`
	Longitude   *float64  `parquet:"longitude,optional,snappy"`
	ErrorText   *string   `parquet:"error_text,optional,snappy"`
	RecordedAt  time.Time `parquet:"recorded_at,snappy"`
}

// Estimate maps to the roadsurvey_estimates table. It is also the row shape
// of a survey written with --output parquet, where SurveyID is zero.
type Estimate struct {
	SurveyID        int64   `parquet:"survey_id,snappy"`
	ImagePath       string  `parquet:"image_path,snappy"`
	DamageType      string  `parquet:"damage_type,snappy,dict"`
	Severity        string  `parquet:"severity,snappy,dict"`
	Confidence      float64 `parquet:"confidence,snappy"`
	AreaSqm         float64 `parquet:"area_sqm,snappy"`
	RepairCost      float64 `parquet:"repair_cost,snappy"`
	RepairTimeHours float64 `parquet:"repair_time_hours,snappy"`
	RepairDays      int32   `parquet:"repair_days,snappy"`
	PriorityLevel   int32   `parquet:"priority_level,snappy"`
	CrewSize        int32   `parquet:"crew_size,snappy"`
}

// WriteSurveyRunsParquet writes survey runs to a Parquet file.
func WriteSurveyRunsParquet(data []SurveyRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteImagesParquet writes image records to a Parquet file.
func WriteImagesParquet(data []Image, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteEstimatesParquet writes estimate records to a Parquet file.
func WriteEstimatesParquet(data []Estimate, outputPath string) error {
	return writeFile(data, outputPath)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRows writes rows to w using a schema inferred from the struct tags of T.
func WriteRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertSurveyRunRecords converts stored runs for Parquet export.
func ConvertSurveyRunRecords(records []schema.SurveyRunRecord) []SurveyRun {
	result := make([]SurveyRun, len(records))
	for i, r := range records {
		result[i] = SurveyRun{
			SurveyID:      r.SurveyID,
			RunUUID:       r.RunUUID,
			AreaName:      r.AreaName,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			TotalImages:   r.TotalImages,
			DamagedImages: r.DamagedImages,
			TotalCost:     r.TotalCost,
			OverallStatus: r.OverallStatus,
			ConfigParams:  r.ConfigParams,
		}
	}
	return result
}

// ConvertImageRecords converts stored images for Parquet export.
func ConvertImageRecords(records []schema.ImageRecord) []Image {
	result := make([]Image, len(records))
	for i, r := range records {
		result[i] = Image{
			SurveyID:    r.SurveyID,
			ImagePath:   r.ImagePath,
			Status:      r.Status,
			DamageCount: r.DamageCount,
			TotalCost:   r.TotalCost,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			ErrorText:   r.ErrorText,
			RecordedAt:  r.RecordedAt,
		}
	}
	return result
}

// ConvertEstimateRecords converts stored estimates for Parquet export.
func ConvertEstimateRecords(records []schema.EstimateRecord) []Estimate {
	result := make([]Estimate, len(records))
	for i, r := range records {
		result[i] = Estimate{
			SurveyID:        r.SurveyID,
			ImagePath:       r.ImagePath,
			DamageType:      r.DamageType,
			Severity:        r.Severity,
			Confidence:      r.Confidence,
			AreaSqm:         r.AreaSqm,
			RepairCost:      r.RepairCost,
			RepairTimeHours: r.RepairTimeHours,
			RepairDays:      r.RepairDays,
			PriorityLevel:   r.PriorityLevel,
			CrewSize:        r.CrewSize,
		}
	}
	return result
}

// EstimateRow converts one estimate into an export row for imagePath.
func EstimateRow(imagePath string, est schema.DamageEstimate) Estimate {
	return Estimate{
		ImagePath:       imagePath,
		DamageType:      string(est.DamageType),
		Severity:        string(est.Severity),
		Confidence:      est.Confidence,
		AreaSqm:         est.AreaSqm,
		RepairCost:      est.RepairCost,
		RepairTimeHours: est.RepairTimeHours,
		RepairDays:      int32(est.RepairDays),
		PriorityLevel:   int32(est.Priority.Level),
		CrewSize:        int32(est.CrewSize.Total),
	}
}

// EstimatesFromSurvey flattens a survey result into one row per estimate in
// image order.
func EstimatesFromSurvey(result *schema.SurveyResult) []Estimate {
	rows := []Estimate{}
	for _, img := range result.Images {
		for _, est := range img.Estimates {
			rows = append(rows, EstimateRow(img.Path, est))
		}
	}
	return rows
}
