// Command analyzer runs the survey pain-point analysis end to end: it loads
// the survey workbook, derives pain scores, clusters respondents, fits the
// per-metric models, and writes the ranking tables and chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"surveycli/internal/config"
	"surveycli/internal/infrastructure"
	"surveycli/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "survey.yaml", "path to the YAML configuration file")
	surveyFile := flag.String("survey", "", "survey workbook path (overrides configuration)")
	reportsDir := flag.String("reports", "", "reports output directory (overrides configuration)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *surveyFile != "" {
		cfg.Input.SurveyFile = *surveyFile
	}
	if *reportsDir != "" {
		cfg.Output.ReportsDir = *reportsDir
	}

	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithRunID(context.Background())
	logger.InfoContext(ctx, "starting survey analyzer",
		slog.String("version", config.AppVersion),
		slog.String("survey_file", cfg.Input.SurveyFile),
		slog.String("reports_dir", cfg.Output.ReportsDir),
	)

	result, err := pipeline.New(cfg, logger).Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "analysis failed", "error", err)
		os.Exit(1)
	}

	printSummary(result)
}

// printSummary writes the human-readable run report to stdout, the way the
// results are reviewed interactively.
func printSummary(result *pipeline.RunResult) {
	fmt.Printf("\nRespondents analyzed: %d\n", result.Respondents)

	fmt.Printf("\nSegmentation: %d clusters", result.Segments.K)
	for c, size := range result.Segments.Sizes() {
		fmt.Printf("  [cluster %d: %d]", c, size)
	}
	fmt.Println()
	fmt.Println("\nCluster-count candidates:")
	for _, cand := range result.Segments.Candidates {
		fmt.Printf("  K=%-2d  ratio=%.3f\n", cand.K, cand.Ratio)
	}

	fmt.Printf("\nTop pain points (of %d metrics):\n", len(result.Pain.Metrics))
	for rank, m := range result.Display {
		fmt.Printf("  %2d. [%3d] %-50s  importance=%.2f  pain=%.2f\n",
			rank+1, m.Index, m.Label, m.MeanImportance, m.MeanDifference)
	}

	fmt.Println("\nPer-metric models:")
	for _, r := range result.Reports {
		fmt.Printf("  [%3d] %s\n", r.Metric.Index, r.Metric.Label)
		fmt.Printf("        lambda=%.4f  deviance mean=%.3f max=%.3f std=%.3f  n=%d\n",
			r.Lambda, r.DevianceMean, r.DevianceMax, r.DevianceStd, r.Observations)
		for _, p := range r.TopPredictors {
			fmt.Printf("        %-24s %+.2f\n", p.Name, p.Weight)
		}
	}
}
