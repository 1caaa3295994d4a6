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

// cacheSetup loads the minimal configuration the cache subcommands need and
// opens only the detection cache.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr, schema.NoneBackend, ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheCmd manages the detection cache.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the detection cache (skips re-running the detector)",
	Long: `Manage the cache of detector output.

Detections are keyed by the image content and the detector settings, so a
re-run over the same folder only invokes the detector for new or changed images.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Examples:
  roadsurvey cache status
  roadsurvey cache clear`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached detections",
	Long: `Delete all cached detections from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear MySQL cache (set connection string via env variable)
  ROADSURVEY_CACHE_BACKEND=mysql ROADSURVEY_CACHE_DB_CONNECT="..." roadsurvey cache clear`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display cache statistics and connection details",
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetDetectionStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("detection cache is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
