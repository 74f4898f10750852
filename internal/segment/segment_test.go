package segment

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveycli/internal/dataset"
)

// blobFrame builds rows jittered around the given centers, center i owning
// rows [i*perCenter, (i+1)*perCenter).
func blobFrame(t *testing.T, centers [][]float64, perCenter int, jitter float64) *dataset.Frame {
	t.Helper()

	cols := []string{"x", "y"}
	frame, err := dataset.NewFrame(cols, len(centers)*perCenter)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	row := 0
	for _, center := range centers {
		for i := 0; i < perCenter; i++ {
			for j, col := range cols {
				v := center[j] + rng.NormFloat64()*jitter
				require.NoError(t, frame.Set(row, col, v))
			}
			row++
		}
	}
	return frame
}

func TestSegmentFindsTwoBlobs(t *testing.T) {
	frame := blobFrame(t, [][]float64{{0, 0}, {10, 10}}, 20, 0.5)

	res, err := Segment(context.Background(), frame, Config{
		MinK:          2,
		MaxK:          6,
		MaxIterations: 100,
		Seed:          42,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.K)
	require.Len(t, res.Labels, 40)

	// All rows of a blob land in the same cluster, and the blobs differ.
	first := res.Labels[0]
	for _, label := range res.Labels[:20] {
		assert.Equal(t, first, label)
	}
	second := res.Labels[20]
	assert.NotEqual(t, first, second)
	for _, label := range res.Labels[20:] {
		assert.Equal(t, second, label)
	}

	sizes := res.Sizes()
	assert.Equal(t, 40, sizes[0]+sizes[1])
}

func TestSegmentDeterministic(t *testing.T) {
	frame := blobFrame(t, [][]float64{{0, 0}, {5, 5}, {-5, 5}}, 15, 0.8)
	cfg := Config{MinK: 2, MaxK: 8, MaxIterations: 100, Seed: 42}

	a, err := Segment(context.Background(), frame, cfg, nil)
	require.NoError(t, err)
	b, err := Segment(context.Background(), frame, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, a.K, b.K)
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Candidates, b.Candidates)
}

func TestSegmentClampsCandidateRange(t *testing.T) {
	frame := blobFrame(t, [][]float64{{0, 0}, {10, 10}}, 3, 0.1)

	res, err := Segment(context.Background(), frame, Config{
		MinK:          2,
		MaxK:          10,
		MaxIterations: 50,
		Seed:          42,
	}, nil)
	require.NoError(t, err)

	// Six rows allow at most five clusters.
	last := res.Candidates[len(res.Candidates)-1]
	assert.Equal(t, 5, last.K)
}

func TestSegmentErrors(t *testing.T) {
	t.Run("missing cells", func(t *testing.T) {
		frame, err := dataset.NewFrame([]string{"x"}, 5)
		require.NoError(t, err)
		require.NoError(t, frame.Set(0, "x", 1))

		_, err = Segment(context.Background(), frame, Config{MinK: 2, MaxK: 3, MaxIterations: 10, Seed: 1}, nil)
		assert.Error(t, err)
	})

	t.Run("too few respondents", func(t *testing.T) {
		frame, err := dataset.NewFrame([]string{"x"}, 2)
		require.NoError(t, err)
		require.NoError(t, frame.Set(0, "x", 1))
		require.NoError(t, frame.Set(1, "x", 2))

		_, err = Segment(context.Background(), frame, Config{MinK: 2, MaxK: 10, MaxIterations: 10, Seed: 1}, nil)
		assert.Error(t, err)
	})
}

func TestPseudoF(t *testing.T) {
	assert.True(t, math.IsInf(pseudoF(10, 0, 20, 2), 1))

	// between=90, within=10, n=20, k=2: (90/1)/(10/18) = 162.
	assert.InDelta(t, 162, pseudoF(90, 10, 20, 2), 1e-9)
}

func TestRunKMeansSeparatesPerfectBlobs(t *testing.T) {
	frame := blobFrame(t, [][]float64{{0, 0}, {100, 100}}, 10, 0)

	run := runKMeans(frame.Matrix(), 2, 50, 42)
	assert.Equal(t, 0.0, run.withinSS)
	assert.NotEqual(t, run.labels[0], run.labels[10])
}
