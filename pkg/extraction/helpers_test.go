package extraction

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"tractfilter/pkg/bundle"
	"tractfilter/pkg/volume"
)

// createImage creates a 10x10x10 image with unit spacing at the origin whose
// voxel values are given by pattern
func createImage(t *testing.T, spacing float64, pattern func(x, y, z int) float64) *volume.Image {
	t.Helper()
	size := 10
	data := make([]float64, size*size*size)
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				data[(z*size+y)*size+x] = pattern(x, y, z)
			}
		}
	}
	img, err := volume.New(volume.Geometry{
		Size:    [3]int{size, size, size},
		Spacing: r3.Vec{X: spacing, Y: spacing, Z: spacing},
	}, data)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	return img
}

// leftMask is 1 for voxels with x < 5 and 0 elsewhere
func leftMask(t *testing.T) *volume.Image {
	return createImage(t, 1, func(x, _, _ int) float64 {
		if x < 5 {
			return 1
		}
		return 0
	})
}

// rightMask is 1 for voxels with x >= 5 and 0 elsewhere
func rightMask(t *testing.T) *volume.Image {
	return createImage(t, 1, func(x, _, _ int) float64 {
		if x >= 5 {
			return 1
		}
		return 0
	})
}

// fiberAt returns a fiber whose i-th point lies at x = xs[i], y = z = 5
func fiberAt(xs ...float64) []r3.Vec {
	points := make([]r3.Vec, len(xs))
	for i, x := range xs {
		points[i] = r3.Vec{X: x, Y: 5, Z: 5}
	}
	return points
}

func createBundle(fibers ...[]r3.Vec) *bundle.Bundle {
	return bundle.FromPolylines(fibers)
}

func testParams(mode Mode) Params {
	p := DefaultParams()
	p.Mode = mode
	p.DontResampleFibers = true
	p.NumCores = 2
	return p
}
