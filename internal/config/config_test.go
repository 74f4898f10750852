package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Responses", cfg.Input.SurveySheet)
	assert.Equal(t, "MetricLabels", cfg.Input.MetricLabelSheet)
	assert.Equal(t, "ID", cfg.Input.IDColumn)

	assert.Equal(t, 3.5, cfg.Analysis.ImportanceThreshold)
	assert.Equal(t, 15, cfg.Analysis.DisplayTopN)
	assert.Equal(t, 5, cfg.Analysis.ModelTopN)
	assert.Equal(t, 2, cfg.Analysis.MinClusters)
	assert.Equal(t, 10, cfg.Analysis.MaxClusters)
	assert.Equal(t, 10, cfg.Analysis.CVFolds)
	assert.Equal(t, int64(42), cfg.Analysis.RandomSeed)
	assert.Equal(t, DefaultPredictors(), cfg.Analysis.Predictors)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	// Ordinal mappings fall back to the questionnaire defaults.
	levels, ok := cfg.Ordinal.Lookup("AGE_BAND")
	require.True(t, ok)
	assert.Equal(t, "Under 25", levels[0])
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
input:
  survey_file: /tmp/other.xlsx
  id_column: RESPID
analysis:
  importance_threshold: 4.0
  display_top_n: 7
  predictors: [AGE_BAND, REGION]
ordinal:
  SPICINESS: [Mild, Medium, Hot]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.xlsx", cfg.Input.SurveyFile)
	assert.Equal(t, "RESPID", cfg.Input.IDColumn)
	assert.Equal(t, 4.0, cfg.Analysis.ImportanceThreshold)
	assert.Equal(t, 7, cfg.Analysis.DisplayTopN)
	assert.Equal(t, []string{"AGE_BAND", "REGION"}, cfg.Analysis.Predictors)

	// An explicit ordinal section replaces the defaults wholesale.
	levels, ok := cfg.Ordinal.Lookup("SPICINESS")
	require.True(t, ok)
	assert.Equal(t, []string{"Mild", "Medium", "Hot"}, levels)
	_, ok = cfg.Ordinal.Lookup("AGE_BAND")
	assert.False(t, ok)

	// Untouched fields keep their defaults.
	assert.Equal(t, "Responses", cfg.Input.SurveySheet)
	assert.Equal(t, 10, cfg.Analysis.CVFolds)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
analysis:
  importance_threshold: 4.0
`)
	t.Setenv("SURVEY_ANALYSIS_IMPORTANCE_THRESHOLD", "2.5")
	t.Setenv("SURVEY_INPUT_ID_COLUMN", "UID")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Analysis.ImportanceThreshold)
	assert.Equal(t, "UID", cfg.Input.IDColumn)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3.5, cfg.Analysis.ImportanceThreshold)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative threshold", "analysis:\n  importance_threshold: -1\n"},
		{"max clusters below min", "analysis:\n  min_clusters: 5\n  max_clusters: 3\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"single-level ordinal", "ordinal:\n  BROKEN: [OnlyOne]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfigFile(t, "analysis: ["))
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{}
	cfg.Output.ReportsDir = filepath.Join(base, "reports")
	cfg.Output.ChartsDir = filepath.Join(base, "charts")
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = filepath.Join(base, "logs", "run.log")

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{"reports", "charts", "logs"} {
		info, err := os.Stat(filepath.Join(base, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestOrdinalLookup(t *testing.T) {
	m := OrdinalMappings{
		"PR1_FREQ":        {"Never", "Daily"},
		"PR1_FREQ_VISITS": {"No", "Yes"},
	}

	// Exact match wins over a shorter prefix.
	levels, ok := m.Lookup("PR1_FREQ_VISITS")
	require.True(t, ok)
	assert.Equal(t, []string{"No", "Yes"}, levels)

	// Prefix match covers the rest of the family.
	levels, ok = m.Lookup("PR1_FREQ_SUPPORT")
	require.True(t, ok)
	assert.Equal(t, []string{"Never", "Daily"}, levels)

	_, ok = m.Lookup("AGE_BAND")
	assert.False(t, ok)
}
