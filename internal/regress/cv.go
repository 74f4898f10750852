package regress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"surveycli/internal/dataset"
	"surveycli/internal/painpoint"
)

// Config controls the cross-validated fits.
type Config struct {
	// Folds is the number of cross-validation folds.
	Folds int
	// LambdaCount and LambdaMinRatio shape the geometric penalty path.
	LambdaCount    int
	LambdaMinRatio float64
	// MaxIterations and Tolerance bound each coordinate-descent fit.
	MaxIterations int
	Tolerance     float64
	// Seed drives fold assignment. Each metric derives its own seed from
	// this one, so per-metric fits stay deterministic when run in parallel.
	Seed int64
	// TopPredictors is how many coefficients the report names.
	TopPredictors int
}

// PathPoint is the cross-validated quality of one penalty strength.
type PathPoint struct {
	Lambda        float64
	MeanMSE       float64
	DevianceRatio float64
}

// PredictorWeight is one reported coefficient, on the standardized scale,
// rounded for display.
type PredictorWeight struct {
	Name   string
	Weight float64
}

// MetricReport is the fitted model summary for one selected metric.
type MetricReport struct {
	Metric painpoint.SelectedMetric

	// Lambda is the penalty chosen by cross-validation; ties in minimal
	// error go to the larger penalty.
	Lambda float64

	// Path holds the cross-validated quality along the whole penalty path.
	Path []PathPoint

	// Deviance-ratio summary across the path.
	DevianceMean float64
	DevianceMax  float64
	DevianceStd  float64

	// TopPredictors are the largest-magnitude coefficients of the final
	// refit, intercept excluded.
	TopPredictors []PredictorWeight

	// Coefficients holds every non-zero coefficient of the final refit.
	Coefficients map[string]float64

	// Observations is the number of respondents the fit used.
	Observations int
}

// FitMetric cross-validates the penalty for one metric's pain scores and
// refits at the winner. Predictor cells must be numeric: any NaN among the
// predictors is a hard error because silent row dropping would desynchronize
// respondent alignment. Respondents whose pain score is missing are removed
// together with their predictor rows, keeping the pairing exact.
func FitMetric(ctx context.Context, metric painpoint.SelectedMetric, predictors *dataset.Frame, target []float64, cfg Config, logger *slog.Logger) (*MetricReport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	names := predictors.Columns()
	if predictors.NumRows() != len(target) {
		return nil, fmt.Errorf("metric %d: %d predictor rows for %d targets",
			metric.Index, predictors.NumRows(), len(target))
	}
	if n := predictors.CountMissing(); n > 0 {
		return nil, fmt.Errorf("metric %d: %d missing predictor cells after imputation", metric.Index, n)
	}

	x, y, kept := pairedRows(predictors.Matrix(), target)
	if dropped := len(target) - kept; dropped > 0 {
		logger.WarnContext(ctx, "respondents without a pain score excluded from fit",
			"metric", metric.Index,
			"excluded", dropped,
		)
	}
	if kept < cfg.Folds {
		return nil, fmt.Errorf("metric %d: %d scored respondents for %d folds", metric.Index, kept, cfg.Folds)
	}

	fullStd := standardize(x)
	path := lambdaPath(fullStd, y, cfg.LambdaCount, cfg.LambdaMinRatio)
	folds := foldAssignments(kept, cfg.Folds, cfg.Seed+int64(metric.Index))

	targetVariance := stat.Variance(y, nil)
	if targetVariance == 0 {
		return nil, fmt.Errorf("metric %d: pain scores are constant, nothing to fit", metric.Index)
	}

	// Accumulate squared prediction error per lambda across folds.
	sqErr := make([]float64, len(path))
	for fold := 0; fold < cfg.Folds; fold++ {
		trainX, trainY, testX, testY := splitFold(x, y, folds, fold)
		if len(testY) == 0 {
			continue
		}
		std := standardize(trainX)

		var warm []float64
		for li, lambda := range path {
			model := fitLasso(std, trainY, lambda, cfg.MaxIterations, cfg.Tolerance, warm)
			warm = model.coefs

			preds := model.predict(testX)
			for i, p := range preds {
				d := p - testY[i]
				sqErr[li] += d * d
			}
		}
	}

	points := make([]PathPoint, len(path))
	bestIdx := 0
	for li, lambda := range path {
		mse := sqErr[li] / float64(kept)
		deviance := 1 - mse/targetVariance
		if deviance < 0 {
			deviance = 0
		}
		points[li] = PathPoint{Lambda: lambda, MeanMSE: mse, DevianceRatio: deviance}
		// Strict less-than keeps the earliest (largest) lambda on ties,
		// favoring more regularization.
		if mse < points[bestIdx].MeanMSE {
			bestIdx = li
		}
	}

	// Refit once on every scored respondent at the chosen penalty.
	final := fitLasso(fullStd, y, path[bestIdx], cfg.MaxIterations, cfg.Tolerance, nil)

	report := &MetricReport{
		Metric:       metric,
		Lambda:       path[bestIdx],
		Path:         points,
		Coefficients: make(map[string]float64),
		Observations: kept,
	}
	deviances := make([]float64, len(points))
	for i, p := range points {
		deviances[i] = p.DevianceRatio
	}
	report.DevianceMean, report.DevianceStd = stat.MeanStdDev(deviances, nil)
	report.DevianceMax = floatsMax(deviances)

	for j, name := range names {
		if final.coefs[j] != 0 {
			report.Coefficients[name] = final.coefs[j]
		}
	}
	report.TopPredictors = topPredictors(names, final.coefs, cfg.TopPredictors)

	logger.InfoContext(ctx, "metric model fitted",
		"metric", metric.Index,
		"label", metric.Label,
		"lambda", report.Lambda,
		"cv_deviance_mean", report.DevianceMean,
		"cv_deviance_max", report.DevianceMax,
		"observations", kept,
	)
	return report, nil
}

// pairedRows drops (predictor row, target) pairs whose target is NaN in a
// single operation, preserving alignment of the survivors.
func pairedRows(x *mat.Dense, target []float64) (*mat.Dense, []float64, int) {
	_, cols := x.Dims()
	var rows []int
	for i, t := range target {
		if !math.IsNaN(t) {
			rows = append(rows, i)
		}
	}

	out := mat.NewDense(len(rows), cols, nil)
	y := make([]float64, len(rows))
	for oi, i := range rows {
		out.SetRow(oi, rowOf(x, i))
		y[oi] = target[i]
	}
	return out, y, len(rows)
}

// foldAssignments shuffles row indices with the given seed and deals them
// round-robin into folds.
func foldAssignments(n, folds int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	out := make([]int, n)
	for i, p := range perm {
		out[p] = i % folds
	}
	return out
}

// splitFold partitions rows into train and test sets for one fold.
func splitFold(x *mat.Dense, y []float64, folds []int, fold int) (*mat.Dense, []float64, *mat.Dense, []float64) {
	_, cols := x.Dims()
	var trainIdx, testIdx []int
	for i, f := range folds {
		if f == fold {
			testIdx = append(testIdx, i)
		} else {
			trainIdx = append(trainIdx, i)
		}
	}

	trainX := mat.NewDense(len(trainIdx), cols, nil)
	trainY := make([]float64, len(trainIdx))
	for oi, i := range trainIdx {
		trainX.SetRow(oi, rowOf(x, i))
		trainY[oi] = y[i]
	}

	testX := mat.NewDense(len(testIdx), cols, nil)
	testY := make([]float64, len(testIdx))
	for oi, i := range testIdx {
		testX.SetRow(oi, rowOf(x, i))
		testY[oi] = y[i]
	}
	return trainX, trainY, testX, testY
}

// topPredictors returns the count largest coefficients by magnitude,
// intercept excluded, weights rounded to two decimals.
func topPredictors(names []string, coefs []float64, count int) []PredictorWeight {
	type ranked struct {
		name   string
		weight float64
	}
	all := make([]ranked, 0, len(coefs))
	for j, c := range coefs {
		all = append(all, ranked{name: names[j], weight: c})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return math.Abs(all[i].weight) > math.Abs(all[j].weight)
	})
	if count > len(all) {
		count = len(all)
	}

	out := make([]PredictorWeight, count)
	for i := 0; i < count; i++ {
		out[i] = PredictorWeight{
			Name:   all[i].name,
			Weight: math.Round(all[i].weight*100) / 100,
		}
	}
	return out
}

// rowOf copies row i of m into a new slice.
func rowOf(m *mat.Dense, i int) []float64 {
	_, cols := m.Dims()
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		out[j] = m.At(i, j)
	}
	return out
}

// floatsMax returns the maximum of a non-empty slice.
func floatsMax(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
