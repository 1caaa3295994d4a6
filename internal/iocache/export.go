package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/parquet"
)

// ExecuteAnalysisExport writes the survey history of store to three Parquet
// files derived from outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("survey tracking is disabled. Set --analysis-backend to export history")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no survey data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total surveys: %d\n", status.TotalRuns)

	runs, err := store.GetAllSurveyRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve survey runs: %w", err)
	}
	images, err := store.GetAllImages()
	if err != nil {
		return fmt.Errorf("failed to retrieve images: %w", err)
	}
	estimates, err := store.GetAllEstimates()
	if err != nil {
		return fmt.Errorf("failed to retrieve estimates: %w", err)
	}

	runsFile := outputFile + ".survey_runs.parquet"
	if err := parquet.WriteSurveyRunsParquet(parquet.ConvertSurveyRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write survey runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d survey runs to: %s\n", len(runs), runsFile)

	imagesFile := outputFile + ".images.parquet"
	if err := parquet.WriteImagesParquet(parquet.ConvertImageRecords(images), imagesFile); err != nil {
		return fmt.Errorf("failed to write images: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d image records to: %s\n", len(images), imagesFile)

	estimatesFile := outputFile + ".estimates.parquet"
	if err := parquet.WriteEstimatesParquet(parquet.ConvertEstimateRecords(estimates), estimatesFile); err != nil {
		return fmt.Errorf("failed to write estimates: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d estimate records to: %s\n", len(estimates), estimatesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with DuckDB, Pandas (via pyarrow) or Spark.")
	return nil
}
