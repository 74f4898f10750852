package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"surveycli/internal/config"
	"surveycli/internal/dataset"
)

// SurveyData bundles everything loaded from one survey workbook.
type SurveyData struct {
	Table  *dataset.Table
	Labels *dataset.LabelSet
}

// LoadSurvey reads the survey workbook: the response sheet into a string
// table and the two lookup sheets into a label set.
func LoadSurvey(ctx context.Context, path string, cfg config.InputConfig, logger *slog.Logger) (*SurveyData, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	logger.InfoContext(ctx, "loading survey workbook",
		"path", path,
		"sheet", cfg.SurveySheet,
	)

	table, err := loadResponseSheet(f, cfg.SurveySheet)
	if err != nil {
		return nil, fmt.Errorf("load response sheet: %w", err)
	}

	metricLabels, err := loadMetricLabels(f, cfg.MetricLabelSheet)
	if err != nil {
		return nil, fmt.Errorf("load metric labels: %w", err)
	}

	// The profiling label sheet is optional; some exports omit it.
	profilingLabels := map[string]string{}
	if cfg.ProfilingLabelSheet != "" {
		profilingLabels, err = loadProfilingLabels(f, cfg.ProfilingLabelSheet)
		if err != nil {
			logger.WarnContext(ctx, "profiling label sheet unavailable, using column names",
				"sheet", cfg.ProfilingLabelSheet,
				"error", err,
			)
			profilingLabels = map[string]string{}
		}
	}

	logger.InfoContext(ctx, "survey workbook loaded",
		"respondents", table.NumRows(),
		"columns", table.NumCols(),
		"metric_labels", len(metricLabels),
		"profiling_labels", len(profilingLabels),
	)

	return &SurveyData{
		Table:  table,
		Labels: dataset.NewLabelSet(metricLabels, profilingLabels),
	}, nil
}

// loadResponseSheet reads the named sheet into a table: first non-empty row
// is the header, everything below is data. Fully empty trailing rows are
// dropped.
func loadResponseSheet(f *excelize.File, sheet string) (*dataset.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	headerRow := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	var data [][]string
	for _, row := range rows[headerRow+1:] {
		if rowEmpty(row) {
			continue
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	return dataset.NewTable(rows[headerRow], data)
}

// loadMetricLabels reads the metric lookup sheet: column A is the metric
// index, column B the label text.
func loadMetricLabels(f *excelize.File, sheet string) (map[int]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	labels := make(map[int]string)
	for i, row := range rows {
		if len(row) < 2 || rowEmpty(row) {
			continue
		}
		key := strings.TrimSpace(row[0])
		idx, err := strconv.Atoi(key)
		if err != nil {
			// Header or annotation row
			continue
		}
		if idx < config.MetricIndexMin || idx > config.MetricIndexMax {
			return nil, fmt.Errorf("lookup row %d: metric index %d outside [%d,%d]",
				i+1, idx, config.MetricIndexMin, config.MetricIndexMax)
		}
		labels[idx] = strings.TrimSpace(row[1])
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("sheet %q contains no metric labels", sheet)
	}
	return labels, nil
}

// loadProfilingLabels reads the profiling lookup sheet: column A is the
// column name, column B the question text.
func loadProfilingLabels(f *excelize.File, sheet string) (map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	labels := make(map[string]string)
	for _, row := range rows {
		if len(row) < 2 || rowEmpty(row) {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" || !strings.HasPrefix(name, config.PrefixProfiling) {
			continue
		}
		labels[name] = strings.TrimSpace(row[1])
	}
	return labels, nil
}

// rowEmpty reports whether every cell in the row is blank.
func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
