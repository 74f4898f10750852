package regress

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// lassoModel is one fitted L1-penalized linear model. Coefficients live on
// the standardized predictor scale; predict undoes the scaling.
type lassoModel struct {
	intercept float64
	coefs     []float64
	means     []float64
	stds      []float64
}

// standardized holds a design matrix with zero-mean unit-variance columns
// plus the parameters to standardize new rows the same way.
type standardized struct {
	x     *mat.Dense
	means []float64
	stds  []float64
}

// standardize centers and scales each column of x. Constant columns scale to
// zero so the penalty removes them instead of dividing by zero.
func standardize(x *mat.Dense) standardized {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	means := make([]float64, cols)
	stds := make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += x.At(i, j)
		}
		means[j] = sum / float64(rows)

		ss := 0.0
		for i := 0; i < rows; i++ {
			d := x.At(i, j) - means[j]
			ss += d * d
		}
		stds[j] = math.Sqrt(ss / float64(rows))

		for i := 0; i < rows; i++ {
			if stds[j] == 0 {
				out.Set(i, j, 0)
				continue
			}
			out.Set(i, j, (x.At(i, j)-means[j])/stds[j])
		}
	}

	return standardized{x: out, means: means, stds: stds}
}

// fitLasso runs cyclic coordinate descent at a single penalty. The design
// matrix must already be standardized; y is centered internally. warm may be
// nil or a coefficient vector from a nearby penalty to start from.
func fitLasso(std standardized, y []float64, lambda float64, maxIter int, tol float64, warm []float64) lassoModel {
	rows, cols := std.x.Dims()

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(rows)

	coefs := make([]float64, cols)
	if warm != nil {
		copy(coefs, warm)
	}

	// residual = centered y - X*coefs
	residual := make([]float64, rows)
	for i := 0; i < rows; i++ {
		pred := 0.0
		for j := 0; j < cols; j++ {
			pred += std.x.At(i, j) * coefs[j]
		}
		residual[i] = (y[i] - yMean) - pred
	}

	n := float64(rows)
	for iter := 0; iter < maxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < cols; j++ {
			if std.stds[j] == 0 {
				continue
			}
			// rho is the correlation of predictor j with the residual plus
			// its own current contribution.
			rho := 0.0
			for i := 0; i < rows; i++ {
				rho += std.x.At(i, j) * (residual[i] + std.x.At(i, j)*coefs[j])
			}
			rho /= n

			updated := softThreshold(rho, lambda)
			if delta := updated - coefs[j]; delta != 0 {
				for i := 0; i < rows; i++ {
					residual[i] -= std.x.At(i, j) * delta
				}
				if d := math.Abs(delta); d > maxDelta {
					maxDelta = d
				}
				coefs[j] = updated
			}
		}
		if maxDelta < tol {
			break
		}
	}

	return lassoModel{intercept: yMean, coefs: coefs, means: std.means, stds: std.stds}
}

// predict evaluates the model on raw (unstandardized) rows of x.
func (m lassoModel) predict(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		pred := m.intercept
		for j := 0; j < cols; j++ {
			if m.stds[j] == 0 {
				continue
			}
			pred += m.coefs[j] * (x.At(i, j) - m.means[j]) / m.stds[j]
		}
		out[i] = pred
	}
	return out
}

// softThreshold is the lasso shrinkage operator.
func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

// lambdaPath builds a geometric penalty sequence from the smallest penalty
// that zeroes every coefficient down to maxLambda*minRatio, largest first.
func lambdaPath(std standardized, y []float64, count int, minRatio float64) []float64 {
	rows, cols := std.x.Dims()

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(rows)

	maxLambda := 0.0
	for j := 0; j < cols; j++ {
		dot := 0.0
		for i := 0; i < rows; i++ {
			dot += std.x.At(i, j) * (y[i] - yMean)
		}
		if abs := math.Abs(dot) / float64(rows); abs > maxLambda {
			maxLambda = abs
		}
	}
	if maxLambda == 0 {
		maxLambda = 1
	}

	path := make([]float64, count)
	ratio := math.Pow(minRatio, 1/float64(count-1))
	lambda := maxLambda
	for i := range path {
		path[i] = lambda
		lambda *= ratio
	}
	return path
}
