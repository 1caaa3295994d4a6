package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/roadsurvey/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // CriticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // ModerateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // LowColor represents informational / low-priority signal.
	GoodColor     = color.New(color.FgGreen)               // GoodColor represents a healthy state.
)

// GetPlainLabel returns the display label of a severity, e.g. "Severe".
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(severity schema.Severity) string {
	return severity.Title()
}

// GetColorLabel returns a colored severity label for console output (table).
func GetColorLabel(severity schema.Severity) string {
	text := GetPlainLabel(severity)

	switch severity {
	case schema.Critical:
		return CriticalColor.Sprint(text)
	case schema.Severe:
		return HighColor.Sprint(text)
	case schema.Moderate:
		return ModerateColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// GetConditionLabel returns a colored label for an overall area condition.
func GetConditionLabel(condition schema.Condition) string {
	text := string(condition)
	switch condition {
	case schema.CriticalState:
		return CriticalColor.Sprint(text)
	case schema.Poor:
		return HighColor.Sprint(text)
	case schema.Fair:
		return ModerateColor.Sprint(text)
	default:
		return GoodColor.Sprint(text)
	}
}

// GetRiskLabel returns a colored label for a risk level.
func GetRiskLabel(level schema.RiskLevel) string {
	text := string(level)
	switch level {
	case schema.VeryHighRisk:
		return CriticalColor.Sprint(text)
	case schema.HighRisk:
		return HighColor.Sprint(text)
	case schema.MediumRisk:
		return ModerateColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the detection cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".roadsurvey_cache.db"
	}
	return filepath.Join(homeDir, ".roadsurvey_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for survey tracking.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".roadsurvey_analysis.db"
	}
	return filepath.Join(homeDir, ".roadsurvey_analysis.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and at least one rune.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
