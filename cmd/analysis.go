package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/iocache"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveAnalysisBackend reads the tracking backend settings from viper.
// An empty backend means tracking is disabled.
func resolveAnalysisBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if backendStr := viper.GetString("analysis-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("analysis-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads the minimal configuration the analysis subcommands need
// and opens only the tracking store.
func analysisSetup() error {
	backend, connStr, err := resolveAnalysisBackend()
	if err != nil {
		return err
	}
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup resolves the backend without opening the store, so
// migrations can run against a fresh database.
func analysisMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resolveAnalysisBackend()
	if err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return errors.New("survey tracking is disabled. Set --analysis-backend to run migrations")
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	return nil
}

// analysisCmd manages the survey history.
//
// Analysis subcommands skip sharedSetup. They only need the tracking backend,
// not an input folder or detector settings.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage survey history tracking and exports",
	Long: `Manage the history of survey runs.

When enabled, roadsurvey records every survey run, storing:
- Run metadata (area, start and end time, configuration)
- One row per image with its status and roll-up
- One row per damage estimate with cost, time and priority

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Examples:
  # Check tracking status
  roadsurvey analysis status --analysis-backend sqlite

  # Export for pandas or DuckDB
  roadsurvey analysis export --analysis-backend sqlite --output-file surveys.parquet`,
}

var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all survey history",
	Long: `Delete all stored survey runs, image records and estimates.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, contract.GetAnalysisDBFilePath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

var analysisStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display survey history statistics and connection details",
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			contract.LogFatal("Failed to get analysis status", errors.New("survey tracking is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export survey history to Parquet for BI tools",
	Long: `Export the stored survey history to Parquet.

Three files are written next to --output-file: survey runs, image records
and damage estimates.

Examples:
  roadsurvey analysis export --analysis-backend sqlite --output-file surveys.parquet
  duckdb -c "SELECT damage_type, sum(repair_cost) FROM 'surveys.parquet.estimates.parquet' GROUP BY 1"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(os.Stdout, iocache.Manager.GetAnalysisStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the survey history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  roadsurvey analysis migrate --analysis-backend postgresql --analysis-db-connect "host=db dbname=surveys"
  roadsurvey analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
