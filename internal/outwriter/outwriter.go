// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSurvey prints a survey result using the configured output format.
func (ow *OutWriter) WriteSurvey(result *schema.SurveyResult, cfg *contract.Config, duration time.Duration) error {
	return WriteSurveyResults(result, cfg, duration)
}

// WriteEstimate prints a single damage estimate using the configured output format.
func (ow *OutWriter) WriteEstimate(est schema.DamageEstimate, cfg *contract.Config) error {
	return WriteEstimateResult(est, cfg)
}

// WriteReport prints an area report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.AreaReport, cfg *contract.Config) error {
	return WriteReportResult(report, cfg)
}

// Fixed column budgets used when sizing the image path column.
const (
	surveyFixedWidth = 95 // # + Status + Damages + Severity + Cost + Hours + Priority
	locationWidth    = 25
	minPathWidth     = 15
	maxPathWidth     = 70
)

// GetMaxTablePathWidth calculates the maximum width for image paths in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	available := termWidth - surveyFixedWidth - locationWidth
	if available < minPathWidth {
		return minPathWidth
	}
	if available > maxPathWidth {
		return maxPathWidth
	}
	return available
}
