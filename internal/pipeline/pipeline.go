// Package pipeline wires the analysis stages in dependency order: load,
// partition, derive, encode, segment, select, model, export. One Run
// processes one dataset once; a failure in any stage halts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"surveycli/internal/chart"
	"surveycli/internal/cleaning"
	"surveycli/internal/config"
	"surveycli/internal/dataset"
	"surveycli/internal/exporter"
	"surveycli/internal/infrastructure"
	"surveycli/internal/loader"
	"surveycli/internal/painpoint"
	"surveycli/internal/regress"
	"surveycli/internal/segment"
	"surveycli/internal/validation"
)

// Pipeline runs the full survey analysis.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a pipeline with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// RunResult collects every stage's output for reporting.
type RunResult struct {
	RunID       string
	Respondents int

	Partition *dataset.Partition
	Pain      *painpoint.Result
	Encoding  *cleaning.Encoding
	Segments  *segment.Result

	// Display holds the top pain points shown in the ranking table and
	// chart; Modeled is its head, the subset the regressions cover.
	Display []painpoint.SelectedMetric
	Modeled []painpoint.SelectedMetric

	Reports []*regress.MetricReport
}

// Run loads the survey workbook and executes the analysis over it.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureRunID(ctx)

	v := validation.NewInputValidator(p.logger)
	if err := v.ValidateWorkbook(p.cfg.Input.SurveyFile); err != nil {
		return nil, fmt.Errorf("validate inputs: %w", err)
	}
	if err := v.ValidateOutputDirectory(p.cfg.Output.ReportsDir); err != nil {
		return nil, fmt.Errorf("validate outputs: %w", err)
	}
	if err := v.ValidateOutputDirectory(p.cfg.Output.ChartsDir); err != nil {
		return nil, fmt.Errorf("validate outputs: %w", err)
	}

	data, err := loader.LoadSurvey(ctx, p.cfg.Input.SurveyFile, p.cfg.Input, p.logger)
	if err != nil {
		return nil, fmt.Errorf("load survey: %w", err)
	}

	result, err := p.RunData(ctx, data)
	if err != nil {
		return nil, err
	}

	if err := p.export(ctx, result); err != nil {
		return nil, fmt.Errorf("export results: %w", err)
	}
	return result, nil
}

// RunData executes the analysis stages over already-loaded survey data.
// It performs no file I/O, which is what the end-to-end tests rely on.
func (p *Pipeline) RunData(ctx context.Context, data *loader.SurveyData) (*RunResult, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := time.Now()

	p.logger.InfoContext(ctx, "starting survey analysis",
		"respondents", data.Table.NumRows(),
		"columns", data.Table.NumCols(),
	)

	part, err := dataset.PartitionColumns(data.Table, p.cfg.Input.IDColumn)
	if err != nil {
		return nil, fmt.Errorf("partition columns: %w", err)
	}
	p.logger.InfoContext(ctx, "columns partitioned",
		"rating_pairs", len(part.RatingPairs),
		"demographics", len(part.Demographics),
		"profiling", len(part.Profiling),
		"excluded", len(part.Excluded),
	)

	pain, err := painpoint.Derive(ctx, data.Table, part, p.logger)
	if err != nil {
		return nil, fmt.Errorf("derive pain scores: %w", err)
	}

	encoder := cleaning.NewEncoder(p.cfg.Ordinal, p.logger)
	encoding, err := encoder.Encode(ctx, data.Table, part.PredictorColumns())
	if err != nil {
		return nil, fmt.Errorf("encode demographics: %w", err)
	}

	demographics, err := encoding.Frame.Select(part.Demographics)
	if err != nil {
		return nil, fmt.Errorf("select demographic matrix: %w", err)
	}
	segments, err := segment.Segment(ctx, demographics, segment.Config{
		MinK:          p.cfg.Analysis.MinClusters,
		MaxK:          p.cfg.Analysis.MaxClusters,
		MaxIterations: p.cfg.Analysis.KMeansMaxIter,
		Seed:          p.cfg.Analysis.RandomSeed,
	}, p.logger)
	if err != nil {
		return nil, fmt.Errorf("segment respondents: %w", err)
	}

	display, err := painpoint.SelectTop(ctx, pain, data.Labels,
		p.cfg.Analysis.ImportanceThreshold, p.cfg.Analysis.DisplayTopN, p.logger)
	if err != nil {
		return nil, fmt.Errorf("select metrics: %w", err)
	}
	modeled := display
	if len(modeled) > p.cfg.Analysis.ModelTopN {
		modeled = modeled[:p.cfg.Analysis.ModelTopN]
	}

	predictors, err := p.predictorFrame(encoding.Frame)
	if err != nil {
		return nil, fmt.Errorf("assemble predictors: %w", err)
	}
	reports, err := regress.FitAll(ctx, modeled, predictors, pain.Differences, regress.Config{
		Folds:          p.cfg.Analysis.CVFolds,
		LambdaCount:    p.cfg.Analysis.LambdaCount,
		LambdaMinRatio: p.cfg.Analysis.LambdaMinRatio,
		MaxIterations:  p.cfg.Analysis.LassoMaxIter,
		Tolerance:      p.cfg.Analysis.LassoTolerance,
		Seed:           p.cfg.Analysis.RandomSeed,
		TopPredictors:  p.cfg.Analysis.TopPredictors,
	}, p.logger)
	if err != nil {
		return nil, fmt.Errorf("fit metric models: %w", err)
	}

	p.logger.InfoContext(ctx, "survey analysis completed",
		"duration", time.Since(start),
		"clusters", segments.K,
		"displayed_metrics", len(display),
		"modeled_metrics", len(modeled),
	)

	return &RunResult{
		RunID:       infrastructure.GetRunID(ctx),
		Respondents: len(pain.Respondents),
		Partition:   part,
		Pain:        pain,
		Encoding:    encoding,
		Segments:    segments,
		Display:     display,
		Modeled:     modeled,
		Reports:     reports,
	}, nil
}

// predictorFrame selects the configured predictor columns from the encoded
// frame. A configured predictor absent from the survey is an error; the
// predictor set is hand-authored, so a typo should not silently shrink it.
func (p *Pipeline) predictorFrame(encoded *dataset.Frame) (*dataset.Frame, error) {
	var missing []string
	var present []string
	for _, name := range p.cfg.Analysis.Predictors {
		if encoded.HasColumn(name) {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("configured predictors not in survey: %v", missing)
	}
	return encoded.Select(present)
}

// export writes the result tables and the pain-point chart.
func (p *Pipeline) export(ctx context.Context, result *RunResult) error {
	writer := exporter.NewCSVWriter(p.cfg.Output.ReportsDir, p.logger)

	if err := writer.WritePainRanking("pain_ranking.csv", result.Display); err != nil {
		return err
	}
	if err := writer.WriteModelReports("metric_models.csv", result.Reports); err != nil {
		return err
	}

	columns, means := p.clusterProfile(result)
	if err := writer.WriteClusterProfile("cluster_profile.csv", result.Segments, columns, means); err != nil {
		return err
	}

	chartPath := filepath.Join(p.cfg.Output.ChartsDir, p.cfg.Output.PainChart)
	if err := chart.RenderPainChart(chartPath, result.Display); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "pain-point chart rendered", "path", chartPath)
	return nil
}

// clusterProfile computes per-cluster means of the encoded demographic
// columns.
func (p *Pipeline) clusterProfile(result *RunResult) ([]string, [][]float64) {
	columns := result.Partition.Demographics
	means := make([][]float64, result.Segments.K)
	counts := make([]int, result.Segments.K)
	for c := range means {
		means[c] = make([]float64, len(columns))
	}

	for row, label := range result.Segments.Labels {
		counts[label]++
		for j, name := range columns {
			v, err := result.Encoding.Frame.At(row, name)
			if err != nil {
				continue
			}
			means[label][j] += v
		}
	}
	for c := range means {
		if counts[c] == 0 {
			continue
		}
		for j := range means[c] {
			means[c][j] /= float64(counts[c])
		}
	}
	return columns, means
}
