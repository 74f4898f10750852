// Command energyplot renders the electricity-consumption time series: it
// reads a tidy CSV of (timestamp, meter, kwh) rows, groups readings per
// meter, and draws one line per meter into a PNG.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"surveycli/internal/chart"
	"surveycli/internal/infrastructure"
	"surveycli/internal/loader"
	"surveycli/internal/validation"
)

func main() {
	inFile := flag.String("in", "data/consumption.csv", "consumption CSV file")
	outFile := flag.String("out", "data/charts/consumption.png", "output chart file")
	flag.Parse()

	logger := slog.Default()
	ctx := infrastructure.ContextWithRunID(context.Background())

	v := validation.NewInputValidator(logger)
	if err := v.ValidateCSV(*inFile); err != nil {
		logger.ErrorContext(ctx, "invalid input", "error", err)
		os.Exit(1)
	}

	readings, err := loader.LoadEnergyCSV(ctx, *inFile, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load consumption data", "error", err)
		os.Exit(1)
	}

	if err := chart.RenderConsumption(*outFile, readings); err != nil {
		logger.ErrorContext(ctx, "failed to render chart", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "consumption chart rendered",
		"readings", len(readings),
		"path", *outFile,
	)
}
