package core

import (
	"fmt"
	"io"

	"github.com/huangsam/roadsurvey/internal/contract"
)

// logSurveyHeader prints what is about to be surveyed.
func logSurveyHeader(w io.Writer, cfg *contract.Config, areaName string, images int, detectorName string) {
	_, _ = fmt.Fprintf(w, "🛣️  Area: %s (Flight: %s)\n", areaName, valueOr(cfg.FlightName, "-"))
	_, _ = fmt.Fprintf(w, "📷 Images: %d in %s | Detector: %s | Workers: %d\n", images, cfg.InputDir, detectorName, cfg.Workers)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
