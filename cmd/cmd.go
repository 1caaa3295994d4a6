// Package cmd defines the command-line interface for roadsurvey.
package cmd

import (
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(surveyCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("area", "", "Area name used in reports (falls back to --flight)")
	rootCmd.PersistentFlags().String("flight", "", "Flight name of the survey")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of images to display in tables")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for non-currency numeric columns")
	rootCmd.PersistentFlags().Float64("pixel-ratio", contract.DefaultPixelToMeter, "Meters per pixel at survey altitude")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Detection cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Survey tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for survey tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of surveyCmd to Viper
	surveyCmd.Flags().String("detector", string(schema.ExecDetector), "Detector: exec (run --detector-cmd per image) or csv (read --detections-file)")
	surveyCmd.Flags().String("detector-cmd", "", "Detector command; the image path is appended as the last argument")
	surveyCmd.Flags().String("detections-file", "", "CSV of precomputed detections for the csv detector")
	surveyCmd.Flags().String("timeout", contract.DefaultDetectTimeout.String(), "Per-image detection timeout")
	surveyCmd.Flags().Int("retries", contract.DefaultDetectRetries, "Retries for a failed detection")
	surveyCmd.Flags().String("retry-interval", contract.DefaultRetryInterval.String(), "Wait between detection retries")
	surveyCmd.Flags().Float64("confidence", contract.DefaultConfidenceThreshold, "Minimum detection confidence")
	surveyCmd.Flags().String("kafka-brokers", "", "Kafka bootstrap servers for publishing survey reports")
	surveyCmd.Flags().String("kafka-topic", contract.DefaultKafkaTopic, "Kafka topic for survey reports")
	if err := viper.BindPFlags(surveyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding survey flags", err)
	}

	// Estimate and summarize flags are command-local and stay out of Viper
	estimateCmd.Flags().Float64Slice("bbox", nil, "Bounding box x1,y1,x2,y2 in pixels")
	summarizeCmd.Flags().Int("images", 0, "Total images surveyed (0 = infer from the input)")

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
