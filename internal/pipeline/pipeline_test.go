package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"surveycli/internal/config"
	"surveycli/internal/dataset"
	"surveycli/internal/loader"
)

var surveyHeaders = []string{
	"ID", "IMP_1", "SAT_1", "IMP_2", "SAT_2", "IMP_3", "SAT_3",
	"AGE_BAND", "GENDER", "KIDS", "REGION", "PR1_FREQ_VISITS", "X_NOTES",
}

// surveyRows builds 50 respondents in two demographic groups. Metric 1 is
// important with mild pain, metric 2 fails the importance threshold, metric 3
// is the top pain point. The pain alternates with the group, giving the
// regressions a clean signal.
func surveyRows() [][]string {
	rows := make([][]string, 50)
	for i := range rows {
		groupA := i%2 == 0

		sat1, sat3 := "4", "2"
		age, gender, kids, region, visits := "Under 25", "Female", "0", "North", "Weekly"
		if !groupA {
			sat1, sat3 = "5", "3"
			age, gender, kids, region, visits = "45-54", "Male", "3", "South", "Never"
		}

		rows[i] = []string{
			strconv.Itoa(i + 1),
			"4 = Very important", sat1,
			"3", "3",
			"5", sat3,
			age, gender, kids, region, visits,
			"free text, ignored",
		}
	}
	return rows
}

func surveyData(t *testing.T) *loader.SurveyData {
	t.Helper()

	table, err := dataset.NewTable(surveyHeaders, surveyRows())
	require.NoError(t, err)

	labels := dataset.NewLabelSet(map[int]string{
		1: "Checkout speed",
		2: "Background music",
		3: "Stock availability",
	}, map[string]string{
		"PR1_FREQ_VISITS": "How often do you visit?",
	})
	return &loader.SurveyData{Table: table, Labels: labels}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Input.IDColumn = "ID"
	cfg.Analysis = config.AnalysisConfig{
		ImportanceThreshold: 3.5,
		DisplayTopN:         15,
		ModelTopN:           5,
		MinClusters:         2,
		MaxClusters:         6,
		KMeansMaxIter:       100,
		CVFolds:             10,
		LambdaCount:         30,
		LambdaMinRatio:      0.001,
		LassoMaxIter:        1000,
		LassoTolerance:      1e-6,
		TopPredictors:       3,
		RandomSeed:          42,
		Predictors:          []string{"AGE_BAND", "GENDER", "KIDS", "PR1_FREQ_VISITS"},
	}
	cfg.Ordinal = config.DefaultOrdinalMappings()
	return cfg
}

func TestRunData(t *testing.T) {
	p := New(testConfig(), nil)

	result, err := p.RunData(context.Background(), surveyData(t))
	require.NoError(t, err)

	assert.Equal(t, 50, result.Respondents)
	assert.NotEmpty(t, result.RunID)

	// Columns land in the right partitions.
	assert.Len(t, result.Partition.RatingPairs, 3)
	assert.Equal(t, []string{"AGE_BAND", "GENDER", "KIDS", "REGION"}, result.Partition.Demographics)
	assert.Equal(t, []string{"PR1_FREQ_VISITS"}, result.Partition.Profiling)
	assert.Equal(t, []string{"X_NOTES"}, result.Partition.Excluded)

	// Metric 2 fails the importance threshold; metric 3 hurts the most.
	require.Len(t, result.Display, 2)
	assert.Equal(t, 3, result.Display[0].Index)
	assert.Equal(t, "Stock availability", result.Display[0].Label)
	assert.InDelta(t, 2.5, result.Display[0].MeanDifference, 1e-9)
	assert.Equal(t, 1, result.Display[1].Index)
	assert.InDelta(t, -0.5, result.Display[1].MeanDifference, 1e-9)

	// Two clean demographic groups segment into two clusters of 25.
	assert.Equal(t, 2, result.Segments.K)
	sizes := result.Segments.Sizes()
	assert.ElementsMatch(t, []int{25, 25}, sizes)

	// Both displayed metrics fall within the model-count cap.
	require.Len(t, result.Reports, 2)
	for _, report := range result.Reports {
		assert.Equal(t, 50, report.Observations)
		assert.GreaterOrEqual(t, report.DevianceMax, report.DevianceMean)
		assert.NotEmpty(t, report.TopPredictors)
	}
	// The group split fully explains metric 3's pain.
	assert.Greater(t, result.Reports[0].DevianceMax, 0.9)
}

func TestRunDataDeterministic(t *testing.T) {
	p := New(testConfig(), nil)

	a, err := p.RunData(context.Background(), surveyData(t))
	require.NoError(t, err)
	b, err := p.RunData(context.Background(), surveyData(t))
	require.NoError(t, err)

	assert.Equal(t, a.Segments.K, b.Segments.K)
	assert.Equal(t, a.Segments.Labels, b.Segments.Labels)
	assert.Equal(t, a.Display, b.Display)
	for i := range a.Reports {
		assert.Equal(t, a.Reports[i].Lambda, b.Reports[i].Lambda)
		assert.Equal(t, a.Reports[i].Coefficients, b.Reports[i].Coefficients)
	}
}

func TestRunDataMissingPredictor(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Predictors = append(cfg.Analysis.Predictors, "INCOME_BAND")
	p := New(cfg, nil)

	_, err := p.RunData(context.Background(), surveyData(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INCOME_BAND")
}

func TestRunDataMissingLabel(t *testing.T) {
	data := surveyData(t)
	data.Labels = dataset.NewLabelSet(map[int]string{1: "Checkout speed"}, nil)
	p := New(testConfig(), nil)

	_, err := p.RunData(context.Background(), data)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrLabelMissing)
}

func TestRunEndToEnd(t *testing.T) {
	base := t.TempDir()
	workbook := filepath.Join(base, "survey.xlsx")
	writeSurveyWorkbook(t, workbook)

	cfg := testConfig()
	cfg.Input.SurveyFile = workbook
	cfg.Input.SurveySheet = "Responses"
	cfg.Input.MetricLabelSheet = "MetricLabels"
	cfg.Input.ProfilingLabelSheet = "ProfilingLabels"
	cfg.Output.ReportsDir = filepath.Join(base, "reports")
	cfg.Output.ChartsDir = filepath.Join(base, "charts")
	cfg.Output.PainChart = "pain_points.png"

	result, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, result.Respondents)

	for _, name := range []string{
		filepath.Join("reports", "pain_ranking.csv"),
		filepath.Join("reports", "metric_models.csv"),
		filepath.Join("reports", "cluster_profile.csv"),
		filepath.Join("charts", "pain_points.png"),
	} {
		info, err := os.Stat(filepath.Join(base, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

// writeSurveyWorkbook materializes the synthetic survey as an xlsx file so the
// full Run path, validation and loading included, gets exercised.
func writeSurveyWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Responses"))

	setRow := func(sheet string, row int, cells []string) {
		for ci, value := range cells {
			cell, err := excelize.CoordinatesToCellName(ci+1, row)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	setRow("Responses", 1, surveyHeaders)
	for i, row := range surveyRows() {
		setRow("Responses", i+2, row)
	}

	_, err := f.NewSheet("MetricLabels")
	require.NoError(t, err)
	setRow("MetricLabels", 1, []string{"1", "Checkout speed"})
	setRow("MetricLabels", 2, []string{"2", "Background music"})
	setRow("MetricLabels", 3, []string{"3", "Stock availability"})

	_, err = f.NewSheet("ProfilingLabels")
	require.NoError(t, err)
	setRow("ProfilingLabels", 1, []string{"PR1_FREQ_VISITS", "How often do you visit?"})

	require.NoError(t, f.SaveAs(path))
}
