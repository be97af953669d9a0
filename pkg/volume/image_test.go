package volume

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewValidatesGeometry(t *testing.T) {
	valid := Geometry{Size: [3]int{2, 2, 2}, Spacing: r3.Vec{X: 1, Y: 1, Z: 1}}

	tests := []struct {
		name string
		geom Geometry
		data []float64
	}{
		{"zero size", Geometry{Size: [3]int{0, 2, 2}, Spacing: valid.Spacing}, nil},
		{"data length", valid, make([]float64, 7)},
		{"zero spacing", Geometry{Size: valid.Size, Spacing: r3.Vec{X: 1, Y: 0, Z: 1}}, make([]float64, 8)},
		{"singular direction", Geometry{Size: valid.Size, Spacing: valid.Spacing, Direction: mat.NewDense(3, 3, nil)}, make([]float64, 8)},
		{"direction shape", Geometry{Size: valid.Size, Spacing: valid.Spacing, Direction: mat.NewDense(2, 2, nil)}, make([]float64, 8)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.geom, tc.data)
			assert.True(t, errors.Is(err, ErrInvalidGeometry), "got %v", err)
		})
	}

	_, err := New(valid, make([]float64, 8))
	assert.NoError(t, err)
}

func TestVoxelLayout(t *testing.T) {
	geom := Geometry{Size: [3]int{3, 2, 2}, Spacing: r3.Vec{X: 1, Y: 1, Z: 1}}
	data := make([]float64, 12)
	for i := range data {
		data[i] = float64(i)
	}
	img, err := New(geom, data)
	require.NoError(t, err)

	assert.Equal(t, 0.0, img.At(0, 0, 0))
	assert.Equal(t, 1.0, img.At(1, 0, 0))
	assert.Equal(t, 3.0, img.At(0, 1, 0))
	assert.Equal(t, 6.0, img.At(0, 0, 1))
	assert.Equal(t, 11.0, img.At(2, 1, 1))

	// the image owns its voxel data
	data[0] = 100
	assert.Equal(t, 0.0, img.At(0, 0, 0))
}

func TestContinuousIndex(t *testing.T) {
	img, err := NewFilled(Geometry{
		Size:    [3]int{10, 10, 10},
		Spacing: r3.Vec{X: 2, Y: 0.5, Z: 1},
		Origin:  r3.Vec{X: -10, Y: 5, Z: 0},
	}, 0)
	require.NoError(t, err)

	ci := img.ContinuousIndex(r3.Vec{X: -6, Y: 6, Z: 3.5})
	assert.InDelta(t, 2.0, ci.X, 1e-12)
	assert.InDelta(t, 2.0, ci.Y, 1e-12)
	assert.InDelta(t, 3.5, ci.Z, 1e-12)

	p := img.PhysicalPoint(ci)
	assert.InDelta(t, -6.0, p.X, 1e-12)
	assert.InDelta(t, 6.0, p.Y, 1e-12)
	assert.InDelta(t, 3.5, p.Z, 1e-12)

	assert.Equal(t, 0.5, img.MinSpacing())
}

func TestContinuousIndexWithDirection(t *testing.T) {
	// axes swapped: grid x runs along physical y, grid y along physical -x
	direction := mat.NewDense(3, 3, []float64{
		0, -1, 0,
		1, 0, 0,
		0, 0, 1,
	})
	img, err := NewFilled(Geometry{
		Size:      [3]int{4, 4, 4},
		Spacing:   r3.Vec{X: 1, Y: 2, Z: 1},
		Direction: direction,
	}, 0)
	require.NoError(t, err)

	ci := img.ContinuousIndex(r3.Vec{X: -4, Y: 3, Z: 1})
	assert.InDelta(t, 3.0, ci.X, 1e-12)
	assert.InDelta(t, 2.0, ci.Y, 1e-12)
	assert.InDelta(t, 1.0, ci.Z, 1e-12)
}

func TestIsInsideBuffer(t *testing.T) {
	img, err := NewFilled(Geometry{Size: [3]int{4, 4, 4}, Spacing: r3.Vec{X: 1, Y: 1, Z: 1}}, 0)
	require.NoError(t, err)

	assert.True(t, img.IsInsideBuffer(r3.Vec{}))
	assert.True(t, img.IsInsideBuffer(r3.Vec{X: -0.5, Y: 3.49, Z: 2}))
	assert.False(t, img.IsInsideBuffer(r3.Vec{X: -0.51}))
	assert.False(t, img.IsInsideBuffer(r3.Vec{Z: 3.5}))
}
