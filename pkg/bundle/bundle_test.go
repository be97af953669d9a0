package bundle

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"tractfilter/internal/models"
)

// createLineFiber creates a straight fiber along x from 0 to length with n points
func createLineFiber(length float64, n int, weight float64) models.Fiber {
	points := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		x := 0.0
		if n > 1 {
			x = length * float64(i) / float64(n-1)
		}
		points[i] = r3.Vec{X: x}
	}
	return models.Fiber{Points: points, Weight: weight}
}

func createTestBundle() *Bundle {
	return New([]models.Fiber{
		createLineFiber(10, 11, 0.1),
		createLineFiber(5, 2, 0.2),
		createLineFiber(0, 1, 0.3),
		{Weight: 0.4},
	})
}

func TestNewDeepCopiesInput(t *testing.T) {
	fibers := []models.Fiber{createLineFiber(1, 2, 1)}
	b := New(fibers)
	fibers[0].Points[0].X = 99

	assert.Equal(t, 0.0, b.Points(0)[0].X)
	assert.Equal(t, 1, b.NumFibers())
}

func TestNilBundleHasNoFibers(t *testing.T) {
	var b *Bundle
	assert.Equal(t, 0, b.NumFibers())
}

func TestCreateFromIndices(t *testing.T) {
	b := createTestBundle()

	t.Run("order and duplicates preserved", func(t *testing.T) {
		indices := []int{3, 0, 0, 1}
		sub, err := b.CreateFromIndices(indices)
		require.NoError(t, err)
		require.Equal(t, len(indices), sub.NumFibers())

		for k, idx := range indices {
			if diff := cmp.Diff(b.Points(idx), sub.Points(k)); diff != "" {
				t.Errorf("fiber %d mismatch (-source +extracted):\n%s", k, diff)
			}
			assert.Equal(t, b.Weight(idx), sub.Weight(k))
		}
	})

	t.Run("empty indices", func(t *testing.T) {
		sub, err := b.CreateFromIndices(nil)
		require.NoError(t, err)
		require.NotNil(t, sub)
		assert.Equal(t, 0, sub.NumFibers())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := b.CreateFromIndices([]int{0, 4})
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
		_, err = b.CreateFromIndices([]int{-1})
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	})

	t.Run("source untouched", func(t *testing.T) {
		sub, err := b.CreateFromIndices([]int{0})
		require.NoError(t, err)
		sub.fibers[0].Points[0].X = 123
		assert.Equal(t, 0.0, b.Points(0)[0].X)
	})
}

func TestResampleLinear(t *testing.T) {
	b := createTestBundle()

	resampled, err := b.ResampleLinear(0.5)
	require.NoError(t, err)
	require.Equal(t, b.NumFibers(), resampled.NumFibers())

	// 10mm straight line at 0.5mm steps -> 21 points
	pts := resampled.Points(0)
	require.Len(t, pts, 21)
	for i := 1; i < len(pts); i++ {
		step := r3.Norm(r3.Sub(pts[i], pts[i-1]))
		assert.InDelta(t, 0.5, step, 1e-9, "step %d", i)
	}
	assert.Equal(t, b.Points(0)[0], pts[0])
	assert.Equal(t, b.Points(0)[10], pts[len(pts)-1])

	// 5mm two-point line -> 11 points
	assert.Len(t, resampled.Points(1), 11)

	// degenerate fibers are copied unchanged
	assert.Len(t, resampled.Points(2), 1)
	assert.Len(t, resampled.Points(3), 0)

	if diff := cmp.Diff(b.Weights(), resampled.Weights()); diff != "" {
		t.Errorf("weights changed by resampling:\n%s", diff)
	}

	// input bundle is never modified
	assert.Len(t, b.Points(0), 11)
}

func TestResampleLinearBentPolyline(t *testing.T) {
	b := FromPolylines([][]r3.Vec{{{}, {X: 1}, {X: 1, Y: 1.5}}})

	resampled, err := b.ResampleLinear(1)
	require.NoError(t, err)

	pts := resampled.Points(0)
	want := []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {X: 1, Y: 1.5}}
	require.Len(t, pts, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, pts[i].X, 1e-9)
		assert.InDelta(t, want[i].Y, pts[i].Y, 1e-9)
	}
}

func TestResampleLinearInvalidSpacing(t *testing.T) {
	b := createTestBundle()
	for _, spacing := range []float64{0, -1, math.NaN()} {
		_, err := b.ResampleLinear(spacing)
		assert.True(t, errors.Is(err, ErrInvalidSpacing), "spacing %v", spacing)
	}
}

func TestSummary(t *testing.T) {
	b := New([]models.Fiber{
		createLineFiber(2, 3, 1),
		createLineFiber(4, 5, 2),
	})

	s := b.Summary()
	assert.Equal(t, 2, s.NumFibers)
	assert.Equal(t, 8, s.NumPoints)
	assert.InDelta(t, 3.0, s.MeanLength, 1e-12)
	assert.InDelta(t, math.Sqrt(2), s.StdDevLength, 1e-12)
	assert.Equal(t, 2.0, s.MinLength)
	assert.Equal(t, 4.0, s.MaxLength)
	assert.Equal(t, 3.0, s.TotalWeight)

	assert.Equal(t, Summary{}, New(nil).Summary())
}
