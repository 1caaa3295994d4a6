package cmd

import (
	"fmt"
	"strconv"

	"github.com/huangsam/roadsurvey/core"
	"github.com/huangsam/roadsurvey/internal/imagestore"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/spf13/cobra"
)

// estimateCmd prices a single detection without running a detector.
var estimateCmd = &cobra.Command{
	Use:   "estimate <damage-type> <confidence>",
	Short: "Estimate repair work for a single detection",
	Long: `Estimate the repair of one damage detection.

<damage-type> is a class name such as D40_Pothole, a short alias like pothole
or a numeric class id. Unknown types are priced with the fallback rates.
Without --bbox the damaged area defaults to 0.1 m².

Examples:
  roadsurvey estimate D40_Pothole 0.92 --bbox 100,120,340,300
  roadsurvey estimate 2 0.55 --output json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		damageType := schema.ParseDamageType(args[0])
		confidence, err := strconv.ParseFloat(args[1], 64)
		if err != nil || !(confidence >= 0 && confidence <= 1) {
			return fmt.Errorf("invalid confidence %q: must be a number between 0 and 1", args[1])
		}
		bbox, err := cmd.Flags().GetFloat64Slice("bbox")
		if err != nil {
			return err
		}
		if len(bbox) != 0 && len(bbox) != 4 {
			return fmt.Errorf("--bbox needs 4 values (x1,y1,x2,y2), got %d", len(bbox))
		}

		det := schema.Detection{DamageType: damageType, Confidence: confidence, BBox: bbox}
		return core.ExecuteEstimate(cfg, det, imagestore.DefaultShape)
	},
}
