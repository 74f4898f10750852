package regress

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"surveycli/internal/dataset"
	"surveycli/internal/painpoint"
)

// FitAll fits one model per selected metric. The metrics are independent,
// so the fits run concurrently; each derives its fold seed from its metric
// index, which keeps every reported number identical to a serial run.
func FitAll(ctx context.Context, metrics []painpoint.SelectedMetric, predictors *dataset.Frame, scores *dataset.Frame, cfg Config, logger *slog.Logger) ([]*MetricReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("no metrics to model")
	}

	reports := make([]*MetricReport, len(metrics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, metric := range metrics {
		g.Go(func() error {
			target, err := scores.Column(painpoint.MetricColumn(metric.Index))
			if err != nil {
				return fmt.Errorf("metric %d: %w", metric.Index, err)
			}
			report, err := FitMetric(gctx, metric, predictors, target, cfg, logger)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
