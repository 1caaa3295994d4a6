package contract

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/roadsurvey/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit         = 25
	MaxResultLimit             = 1000
	DefaultPrecision           = 2
	DefaultDetectTimeout       = 60 * time.Second
	DefaultDetectRetries       = 1
	DefaultRetryInterval       = 2 * time.Second
	DefaultConfidenceThreshold = 0.3
	DefaultPixelToMeter        = 0.01
	DefaultKafkaTopic          = "road-damage-reports"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a survey.
// This struct remains the "final, validated" config.
type Config struct {
	InputDir   string
	AreaName   string
	FlightName string

	Workers             int
	DetectTimeout       time.Duration
	DetectRetries       int
	RetryInterval       time.Duration
	ConfidenceThreshold float64
	PixelToMeter        float64

	Detector        schema.DetectorKind
	DetectorCommand []string
	DetectionsFile  string

	Limit      int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	KafkaBrokers string
	KafkaTopic   string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputDirStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile        string  `mapstructure:"output-file"`
	Output            string  `mapstructure:"output"`
	Limit             int     `mapstructure:"limit"`
	Precision         int     `mapstructure:"precision"`
	Workers           int     `mapstructure:"workers"`
	Width             int     `mapstructure:"width"`
	Color             string  `mapstructure:"color"`
	Verbose           bool    `mapstructure:"verbose"`
	PixelRatio        float64 `mapstructure:"pixel-ratio"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	AnalysisBackend   string  `mapstructure:"analysis-backend"`
	AnalysisDBConnect string  `mapstructure:"analysis-db-connect"`

	// --- Fields from surveyCmd.Flags() ---
	Area           string  `mapstructure:"area"`
	Flight         string  `mapstructure:"flight"`
	Detector       string  `mapstructure:"detector"`
	DetectorCmd    string  `mapstructure:"detector-cmd"`
	DetectionsFile string  `mapstructure:"detections-file"`
	Timeout        string  `mapstructure:"timeout"`
	Retries        int     `mapstructure:"retries"`
	RetryInterval  string  `mapstructure:"retry-interval"`
	Confidence     float64 `mapstructure:"confidence"`
	KafkaBrokers   string  `mapstructure:"kafka-brokers"`
	KafkaTopic     string  `mapstructure:"kafka-topic"`
}

// numericSettings groups the bounded numeric inputs checked by the validator.
type numericSettings struct {
	Workers       int           `flag:"workers" validate:"gt=0"`
	Limit         int           `flag:"limit" validate:"gt=0,lte=1000"`
	Precision     int           `flag:"precision" validate:"min=1,max=2"`
	Retries       int           `flag:"retries" validate:"gte=0,lte=10"`
	Confidence    float64       `flag:"confidence" validate:"gte=0,lte=1"`
	PixelRatio    float64       `flag:"pixel-ratio" validate:"gt=0,lte=10"`
	Timeout       time.Duration `flag:"timeout" validate:"gt=0"`
	RetryInterval time.Duration `flag:"retry-interval" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	return v
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.DetectorCommand != nil {
		clone.DetectorCommand = make([]string, len(c.DetectorCommand))
		copy(clone.DetectorCommand, c.DetectorCommand)
	}
	return &clone
}

// ResolveAreaName picks the area label for reports: the explicit area, then
// the flight name, then a fixed placeholder.
func (c *Config) ResolveAreaName() string {
	switch {
	case c.AreaName != "":
		return c.AreaName
	case c.FlightName != "":
		return c.FlightName
	default:
		return "Unknown Area"
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSurveyInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateSurveyInputs checks the settings only a survey run needs.
func ValidateSurveyInputs(cfg *Config) error {
	if cfg.InputDir == "" {
		return errors.New("an input folder is required")
	}
	switch cfg.Detector {
	case schema.ExecDetector:
		if len(cfg.DetectorCommand) == 0 {
			return errors.New("--detector-cmd is required when using the exec detector")
		}
	case schema.CSVDetector:
		if cfg.DetectionsFile == "" {
			return errors.New("--detections-file is required when using the csv detector")
		}
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	return nil
}

// validateBackendConfigs validates detection cache and survey tracking backends.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		cfg.AnalysisBackend = schema.NoneBackend
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// Cache and tracking tables must not share a SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output and numeric fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	timeout, err := parseDuration(input.Timeout, DefaultDetectTimeout)
	if err != nil {
		return fmt.Errorf("invalid --timeout value: %w", err)
	}
	retryInterval, err := parseDuration(input.RetryInterval, DefaultRetryInterval)
	if err != nil {
		return fmt.Errorf("invalid --retry-interval value: %w", err)
	}

	pixelRatio := input.PixelRatio
	if pixelRatio == 0 {
		pixelRatio = DefaultPixelToMeter
	}

	settings := numericSettings{
		Workers:       input.Workers,
		Limit:         input.Limit,
		Precision:     input.Precision,
		Retries:       input.Retries,
		Confidence:    input.Confidence,
		PixelRatio:    pixelRatio,
		Timeout:       timeout,
		RetryInterval: retryInterval,
	}
	if err := validate.Struct(settings); err != nil {
		return describeValidation(err)
	}

	cfg.Workers = settings.Workers
	cfg.Limit = settings.Limit
	cfg.Precision = settings.Precision
	cfg.DetectRetries = settings.Retries
	cfg.ConfidenceThreshold = settings.Confidence
	cfg.PixelToMeter = settings.PixelRatio
	cfg.DetectTimeout = settings.Timeout
	cfg.RetryInterval = settings.RetryInterval

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	return nil
}

// processSurveyInputs resolves naming and detector settings.
func processSurveyInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputDir = input.InputDirStr
	cfg.AreaName = strings.TrimSpace(input.Area)
	cfg.FlightName = strings.TrimSpace(input.Flight)
	cfg.DetectorCommand = strings.Fields(input.DetectorCmd)
	cfg.DetectionsFile = input.DetectionsFile
	cfg.KafkaBrokers = input.KafkaBrokers
	cfg.KafkaTopic = input.KafkaTopic
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = DefaultKafkaTopic
	}

	cfg.Detector = schema.DetectorKind(strings.ToLower(input.Detector))
	if cfg.Detector == "" {
		cfg.Detector = schema.ExecDetector
	}
	if _, ok := schema.ValidDetectorKinds[cfg.Detector]; !ok {
		return fmt.Errorf("invalid detector '%s'. must be exec, csv", input.Detector)
	}
	return nil
}

// describeValidation turns validator errors into a flag-oriented message.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fmt.Errorf("invalid --%s value %v (must satisfy %s)", fe.Field(), fe.Value(), rule)
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
