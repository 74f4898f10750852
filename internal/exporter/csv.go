// Package exporter writes the derived tables to CSV so every displayed
// result has a durable artifact next to the charts.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"surveycli/internal/painpoint"
	"surveycli/internal/regress"
	"surveycli/internal/segment"
)

// CSVWriter provides CSV export for the analyzer's result tables.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at the reports directory.
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger}
}

// WriteOptions configures one CSV file.
type WriteOptions struct {
	Headers []string
	Records [][]string
	// BOMPrefix adds a UTF-8 BOM so Excel opens the file correctly.
	BOMPrefix bool
}

// WriteCSV writes one file under the reports directory.
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	fullPath := filepath.Join(w.dir, name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.logger.Info("CSV file written",
		slog.String("path", fullPath),
		slog.Int("records", len(options.Records)),
	)
	return nil
}

// WritePainRanking exports the selected pain-point metrics.
func (w *CSVWriter) WritePainRanking(name string, metrics []painpoint.SelectedMetric) error {
	records := make([][]string, len(metrics))
	for i, m := range metrics {
		records[i] = []string{
			strconv.Itoa(m.Index),
			m.Label,
			formatFloat(m.MeanImportance),
			formatFloat(m.MeanDifference),
			strconv.Itoa(m.Scored),
		}
	}
	return w.WriteCSV(name, WriteOptions{
		Headers:   []string{"metric", "label", "mean_importance", "mean_pain", "respondents"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteClusterProfile exports per-cluster sizes and mean attribute values.
func (w *CSVWriter) WriteClusterProfile(name string, result *segment.Result, columns []string, means [][]float64) error {
	headers := append([]string{"cluster", "size"}, columns...)
	sizes := result.Sizes()

	records := make([][]string, result.K)
	for c := 0; c < result.K; c++ {
		record := make([]string, 0, len(headers))
		record = append(record, strconv.Itoa(c), strconv.Itoa(sizes[c]))
		for j := range columns {
			record = append(record, formatFloat(means[c][j]))
		}
		records[c] = record
	}
	return w.WriteCSV(name, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

// WriteModelReports exports the per-metric regression summaries.
func (w *CSVWriter) WriteModelReports(name string, reports []*regress.MetricReport) error {
	headers := []string{
		"metric", "label", "lambda", "cv_deviance_mean", "cv_deviance_max",
		"cv_deviance_std", "observations", "top_predictors",
	}
	records := make([][]string, len(reports))
	for i, r := range reports {
		top := ""
		for j, p := range r.TopPredictors {
			if j > 0 {
				top += "; "
			}
			top += fmt.Sprintf("%s=%+.2f", p.Name, p.Weight)
		}
		records[i] = []string{
			strconv.Itoa(r.Metric.Index),
			r.Metric.Label,
			formatFloat(r.Lambda),
			formatFloat(r.DevianceMean),
			formatFloat(r.DevianceMax),
			formatFloat(r.DevianceStd),
			strconv.Itoa(r.Observations),
			top,
		}
	}
	return w.WriteCSV(name, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
