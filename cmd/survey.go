package cmd

import (
	"github.com/huangsam/roadsurvey/core"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/spf13/cobra"
)

// surveyCmd runs the detector over a folder and prints the area report.
var surveyCmd = &cobra.Command{
	Use:   "survey <input-dir>",
	Short: "Estimate repair work for every image in a drone survey folder",
	Long: `Run the damage detector on every image under <input-dir> and turn each
detection into a repair estimate: area, cost, time, priority and method.

Images are processed on --workers goroutines. A failing or slow image is
recorded as an error and never stops the survey. The area report at the end
rolls all estimates up into a condition, a maintenance plan and a risk level.

Detectors:
  exec - run --detector-cmd once per image; the command prints a JSON array
         of {"class_id","confidence","bbox"} objects to stdout
  csv  - read precomputed detections from --detections-file

Examples:
  roadsurvey survey ./flight-07 --detector-cmd "python detect.py" --area "Route 9"
  roadsurvey survey ./flight-07 --detector csv --detections-file dets.csv --output json
  roadsurvey survey ./flight-07 --detector-cmd ./yolo --output parquet --output-file run.parquet`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		if err := sharedSetup(args[0]); err != nil {
			return err
		}
		return contract.ValidateSurveyInputs(cfg)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteSurvey(rootCtx, cfg, cacheManager)
	},
}
