package segment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"surveycli/internal/dataset"
)

// Config controls the segmenter.
type Config struct {
	// MinK and MaxK bound the candidate cluster counts, inclusive.
	MinK int
	MaxK int
	// MaxIterations caps each k-means fit.
	MaxIterations int
	// Seed drives centroid initialization; the same seed is used for every
	// candidate and for the final fit.
	Seed int64
}

// Candidate is the partition quality of one cluster count.
type Candidate struct {
	K         int
	WithinSS  float64
	BetweenSS float64
	// Ratio is (between/(K-1)) / (within/(N-K)), the pseudo-F statistic.
	Ratio float64
}

// Result is the chosen segmentation.
type Result struct {
	K          int
	Labels     []int
	Candidates []Candidate
}

// Sizes returns the number of respondents per cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, r.K)
	for _, label := range r.Labels {
		sizes[label]++
	}
	return sizes
}

// Segment chooses a cluster count by maximizing the pseudo-F ratio over the
// candidate range, then fits once more at the winner and labels every
// respondent. The input frame must be fully numeric and imputed; any NaN is
// an error.
func Segment(ctx context.Context, frame *dataset.Frame, cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data := frame.Matrix()
	rows, cols := data.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty demographic matrix")
	}
	if n := frame.CountMissing(); n > 0 {
		return nil, fmt.Errorf("demographic matrix has %d missing cells after imputation", n)
	}
	if cfg.MinK < 2 {
		return nil, fmt.Errorf("minimum cluster count must be at least 2, got %d", cfg.MinK)
	}

	maxK := cfg.MaxK
	if maxK >= rows {
		maxK = rows - 1
		logger.WarnContext(ctx, "candidate range clamped to respondent count",
			"max_k", cfg.MaxK,
			"clamped", maxK,
		)
	}
	if maxK < cfg.MinK {
		return nil, fmt.Errorf("too few respondents (%d) for %d clusters", rows, cfg.MinK)
	}

	totalSS := totalSumOfSquares(data)

	// Map over the candidate counts, collect one quality record each.
	candidates := make([]Candidate, 0, maxK-cfg.MinK+1)
	for k := cfg.MinK; k <= maxK; k++ {
		run := runKMeans(data, k, cfg.MaxIterations, cfg.Seed)
		between := totalSS - run.withinSS
		candidates = append(candidates, Candidate{
			K:         k,
			WithinSS:  run.withinSS,
			BetweenSS: between,
			Ratio:     pseudoF(between, run.withinSS, rows, k),
		})
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Ratio > best.Ratio {
			best = c
		}
	}

	logger.InfoContext(ctx, "cluster count selected",
		"k", best.K,
		"ratio", best.Ratio,
		"candidates", len(candidates),
	)

	// Final fit at the winning count, same seed.
	final := runKMeans(data, best.K, cfg.MaxIterations, cfg.Seed)

	return &Result{
		K:          best.K,
		Labels:     final.labels,
		Candidates: candidates,
	}, nil
}

// pseudoF computes the Calinski-Harabasz style variance ratio. A zero
// within-cluster sum (perfect separation) maps to +Inf.
func pseudoF(between, within float64, n, k int) float64 {
	if within == 0 {
		return math.Inf(1)
	}
	return (between / float64(k-1)) / (within / float64(n-k))
}

// totalSumOfSquares is the squared distance of every row to the grand mean.
func totalSumOfSquares(data *mat.Dense) float64 {
	rows, cols := data.Dims()
	grand := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += data.At(i, j)
		}
		grand[j] = sum / float64(rows)
	}

	total := 0.0
	for i := 0; i < rows; i++ {
		total += squaredDistance(data.RawRowView(i), grand)
	}
	return total
}
