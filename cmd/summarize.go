package cmd

import (
	"github.com/huangsam/roadsurvey/core"
	"github.com/spf13/cobra"
)

// summarizeCmd rebuilds the area report from saved estimates.
var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Build an area report from saved damage estimates",
	Long: `Aggregate damage estimates into an area report without re-running detection.

<file> is either a JSON array of estimates or the JSON output of a survey run.

Examples:
  roadsurvey survey ./flight-07 --detector-cmd ./yolo --output json --output-file run.json
  roadsurvey summarize run.json --area "Route 9"
  roadsurvey summarize estimates.json --images 120 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := cmd.Flags().GetInt("images")
		if err != nil {
			return err
		}
		return core.ExecuteSummarize(cfg, args[0], images)
	},
}
