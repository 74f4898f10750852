package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete analyzer configuration
type Config struct {
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`

	// Ordinal holds the hand-authored ordered-category tables. YAML only;
	// when absent the questionnaire defaults apply.
	Ordinal OrdinalMappings `yaml:"ordinal" ignored:"true"`
}

// InputConfig locates the survey workbook and its sheets
type InputConfig struct {
	SurveyFile          string `yaml:"survey_file" envconfig:"SURVEY_FILE" default:"data/survey.xlsx" validate:"required"`
	SurveySheet         string `yaml:"survey_sheet" envconfig:"SURVEY_SHEET" default:"Responses" validate:"required"`
	MetricLabelSheet    string `yaml:"metric_label_sheet" envconfig:"METRIC_LABEL_SHEET" default:"MetricLabels" validate:"required"`
	ProfilingLabelSheet string `yaml:"profiling_label_sheet" envconfig:"PROFILING_LABEL_SHEET" default:"ProfilingLabels"`
	IDColumn            string `yaml:"id_column" envconfig:"ID_COLUMN" default:"ID" validate:"required"`
}

// AnalysisConfig contains the numeric knobs of the pipeline
type AnalysisConfig struct {
	ImportanceThreshold float64 `yaml:"importance_threshold" envconfig:"IMPORTANCE_THRESHOLD" default:"3.5" validate:"gt=0"`
	DisplayTopN         int     `yaml:"display_top_n" envconfig:"DISPLAY_TOP_N" default:"15" validate:"gt=0"`
	ModelTopN           int     `yaml:"model_top_n" envconfig:"MODEL_TOP_N" default:"5" validate:"gt=0"`
	MinClusters         int     `yaml:"min_clusters" envconfig:"MIN_CLUSTERS" default:"2" validate:"gte=2"`
	MaxClusters         int     `yaml:"max_clusters" envconfig:"MAX_CLUSTERS" default:"10" validate:"gtefield=MinClusters"`
	KMeansMaxIter       int     `yaml:"kmeans_max_iter" envconfig:"KMEANS_MAX_ITER" default:"100" validate:"gt=0"`
	CVFolds             int     `yaml:"cv_folds" envconfig:"CV_FOLDS" default:"10" validate:"gt=1"`
	LambdaCount         int     `yaml:"lambda_count" envconfig:"LAMBDA_COUNT" default:"100" validate:"gt=1"`
	LambdaMinRatio      float64 `yaml:"lambda_min_ratio" envconfig:"LAMBDA_MIN_RATIO" default:"0.001" validate:"gt=0,lt=1"`
	LassoMaxIter        int     `yaml:"lasso_max_iter" envconfig:"LASSO_MAX_ITER" default:"1000" validate:"gt=0"`
	LassoTolerance      float64 `yaml:"lasso_tolerance" envconfig:"LASSO_TOLERANCE" default:"0.000001" validate:"gt=0"`
	TopPredictors       int     `yaml:"top_predictors" envconfig:"TOP_PREDICTORS" default:"3" validate:"gt=0"`
	RandomSeed          int64   `yaml:"random_seed" envconfig:"RANDOM_SEED" default:"42"`

	// Predictors is the hand-selected predictor subset for the per-metric
	// regressions: demographic and profiling column names from the survey
	// sheet. Rows are never dropped for missingness in these columns.
	Predictors []string `yaml:"predictors" envconfig:"PREDICTORS" validate:"min=1"`
}

// OutputConfig controls where derived tables and charts land
type OutputConfig struct {
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports" validate:"required"`
	ChartsDir  string `yaml:"charts_dir" envconfig:"CHARTS_DIR" default:"data/charts" validate:"required"`
	PainChart  string `yaml:"pain_chart" envconfig:"PAIN_CHART" default:"pain_points.png"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/analyzer.log"`
}

// Load loads configuration from the optional YAML file and the environment,
// environment winning, then fills the ordinal and predictor defaults and
// validates the result.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
			}
		}
	}

	// envconfig fills defaults for zero-valued fields and applies overrides
	if err := envconfig.Process("SURVEY", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if len(cfg.Ordinal) == 0 {
		cfg.Ordinal = DefaultOrdinalMappings()
	}
	if len(cfg.Analysis.Predictors) == 0 {
		cfg.Analysis.Predictors = DefaultPredictors()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// DefaultPredictors returns the manually selected predictor subset used by
// the per-metric regressions.
func DefaultPredictors() []string {
	return []string{
		"AGE_BAND",
		"INCOME_BAND",
		"EDUCATION",
		"TENURE",
		"HOUSEHOLD_SIZE",
		"GENDER",
		"REGION",
		"PR1_FREQ_VISITS",
		"PR1_FREQ_SUPPORT",
		"PR1_CHANNEL",
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, levels := range c.Ordinal {
		if len(levels) < 2 {
			return fmt.Errorf("ordinal mapping %q needs at least two levels", name)
		}
	}
	return nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Output.ReportsDir, c.Output.ChartsDir}
	if c.Logging.Output != "console" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
