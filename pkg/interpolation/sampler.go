package interpolation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"tractfilter/pkg/volume"
)

// Method selects how voxel values are reconstructed between grid points
type Method int

const (
	NearestNeighbor Method = iota
	Linear
)

// String returns the method name
func (m Method) String() string {
	switch m {
	case NearestNeighbor:
		return "nearest"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}

// MethodFor maps an interpolate flag to a Method
func MethodFor(interpolate bool) Method {
	if interpolate {
		return Linear
	}
	return NearestNeighbor
}

// Sample evaluates img at physical point p. The image is passed on every call
// so one sampler can serve many images from many goroutines. ok is false when
// p lies outside the voxel grid, in which case the value is 0.
func Sample(img *volume.Image, p r3.Vec, method Method) (value float64, ok bool) {
	ci := img.ContinuousIndex(p)
	if !img.IsInsideBuffer(ci) {
		return 0, false
	}

	if method == Linear {
		return trilinear(img, ci), true
	}
	return nearest(img, ci), true
}

// nearest returns the value of the voxel whose centre is closest to ci
func nearest(img *volume.Image, ci r3.Vec) float64 {
	size := img.Size()
	x := clamp(int(math.Round(ci.X)), size[0])
	y := clamp(int(math.Round(ci.Y)), size[1])
	z := clamp(int(math.Round(ci.Z)), size[2])
	return img.At(x, y, z)
}

// trilinear blends the eight voxels surrounding ci. Neighbours beyond the grid
// edge are clamped to the border voxel.
func trilinear(img *volume.Image, ci r3.Vec) float64 {
	size := img.Size()

	fx, fy, fz := math.Floor(ci.X), math.Floor(ci.Y), math.Floor(ci.Z)
	dx, dy, dz := ci.X-fx, ci.Y-fy, ci.Z-fz

	x0, x1 := clamp(int(fx), size[0]), clamp(int(fx)+1, size[0])
	y0, y1 := clamp(int(fy), size[1]), clamp(int(fy)+1, size[1])
	z0, z1 := clamp(int(fz), size[2]), clamp(int(fz)+1, size[2])

	c00 := img.At(x0, y0, z0)*(1-dx) + img.At(x1, y0, z0)*dx
	c10 := img.At(x0, y1, z0)*(1-dx) + img.At(x1, y1, z0)*dx
	c01 := img.At(x0, y0, z1)*(1-dx) + img.At(x1, y0, z1)*dx
	c11 := img.At(x0, y1, z1)*(1-dx) + img.At(x1, y1, z1)*dx

	c0 := c00*(1-dy) + c10*dy
	c1 := c01*(1-dy) + c11*dy

	return c0*(1-dz) + c1*dz
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
