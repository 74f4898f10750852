package segment

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// kmeansRun holds one converged k-means fit.
type kmeansRun struct {
	labels    []int
	centroids *mat.Dense
	withinSS  float64
}

// runKMeans fits Lloyd's algorithm with k centroids. Initialization draws k
// distinct rows using a source seeded per call, so the same (data, k, seed)
// always converges identically regardless of what ran before.
func runKMeans(data *mat.Dense, k, maxIter int, seed int64) kmeansRun {
	rows, cols := data.Dims()
	rng := rand.New(rand.NewSource(seed))

	// Pick k distinct rows as starting centroids.
	perm := rng.Perm(rows)
	centroids := mat.NewDense(k, cols, nil)
	for c := 0; c < k; c++ {
		centroids.SetRow(c, data.RawRowView(perm[c]))
	}

	labels := make([]int, rows)
	counts := make([]int, k)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i := 0; i < rows; i++ {
			best := nearestCentroid(data.RawRowView(i), centroids, k)
			if labels[i] != best || iter == 0 {
				if labels[i] != best {
					changed = true
				}
				labels[i] = best
			}
		}
		if iter > 0 && !changed {
			break
		}

		// Recompute centroids.
		centroids.Zero()
		for c := range counts {
			counts[c] = 0
		}
		for i := 0; i < rows; i++ {
			c := labels[i]
			counts[c]++
			for j := 0; j < cols; j++ {
				centroids.Set(c, j, centroids.At(c, j)+data.At(i, j))
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an empty cluster with the row farthest from its
				// assigned centroid.
				far := farthestRow(data, centroids, labels)
				centroids.SetRow(c, data.RawRowView(far))
				labels[far] = c
				counts[c] = 1
				continue
			}
			for j := 0; j < cols; j++ {
				centroids.Set(c, j, centroids.At(c, j)/float64(counts[c]))
			}
		}
	}

	withinSS := 0.0
	for i := 0; i < rows; i++ {
		withinSS += squaredDistance(data.RawRowView(i), centroids.RawRowView(labels[i]))
	}

	return kmeansRun{labels: labels, centroids: centroids, withinSS: withinSS}
}

// nearestCentroid returns the index of the centroid closest to the point.
func nearestCentroid(point []float64, centroids *mat.Dense, k int) int {
	best := 0
	bestDist := math.Inf(1)
	for c := 0; c < k; c++ {
		d := squaredDistance(point, centroids.RawRowView(c))
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// farthestRow returns the row with the largest distance to its assigned
// centroid.
func farthestRow(data, centroids *mat.Dense, labels []int) int {
	rows, _ := data.Dims()
	far := 0
	farDist := -1.0
	for i := 0; i < rows; i++ {
		d := squaredDistance(data.RawRowView(i), centroids.RawRowView(labels[i]))
		if d > farDist {
			farDist = d
			far = i
		}
	}
	return far
}

// squaredDistance is the squared Euclidean distance between two vectors.
func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
