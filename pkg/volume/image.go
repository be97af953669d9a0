// Package volume provides a 3D voxel image with a physical-space geometry
// (spacing, origin and direction cosines), as used for ROI masks and label maps.
package volume

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidGeometry is returned when an image cannot be constructed from the given geometry
var ErrInvalidGeometry = errors.New("invalid image geometry")

// Geometry describes the grid and its placement in physical space
type Geometry struct {
	// Size is the number of voxels along x, y and z
	Size [3]int

	// Spacing is the physical voxel size along each axis, in mm
	Spacing r3.Vec

	// Origin is the physical position of voxel (0,0,0)
	Origin r3.Vec

	// Direction holds the direction cosines as columns. Nil means identity.
	Direction *mat.Dense
}

// Image is a scalar voxel grid stored in x-fastest order.
// Images are read-only once created and safe for concurrent sampling.
type Image struct {
	data    []float64
	size    [3]int
	spacing r3.Vec
	origin  r3.Vec

	// indexToPhysical is Direction * diag(Spacing), physicalToIndex its inverse
	indexToPhysical [3][3]float64
	physicalToIndex [3][3]float64
}

// New creates an image with the given geometry and voxel data.
// data must hold Size[0]*Size[1]*Size[2] values.
func New(geom Geometry, data []float64) (*Image, error) {
	n := 1
	for axis, s := range geom.Size {
		if s <= 0 {
			return nil, fmt.Errorf("%w: size along axis %d is %d", ErrInvalidGeometry, axis, s)
		}
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: expected %d voxels, got %d", ErrInvalidGeometry, n, len(data))
	}
	spacing := [3]float64{geom.Spacing.X, geom.Spacing.Y, geom.Spacing.Z}
	for axis, s := range spacing {
		if !(s > 0) {
			return nil, fmt.Errorf("%w: spacing along axis %d is %g", ErrInvalidGeometry, axis, s)
		}
	}

	direction := geom.Direction
	if direction == nil {
		direction = identity()
	}
	if r, c := direction.Dims(); r != 3 || c != 3 {
		return nil, fmt.Errorf("%w: direction matrix must be 3x3, got %dx%d", ErrInvalidGeometry, r, c)
	}

	// Index-to-physical matrix: direction columns scaled by spacing
	var indexToPhysical mat.Dense
	indexToPhysical.Mul(direction, mat.NewDiagDense(3, spacing[:]))

	var inverse mat.Dense
	if err := inverse.Inverse(&indexToPhysical); err != nil {
		return nil, fmt.Errorf("%w: direction matrix is singular: %v", ErrInvalidGeometry, err)
	}

	img := &Image{
		data:    append([]float64(nil), data...),
		size:    geom.Size,
		spacing: geom.Spacing,
		origin:  geom.Origin,
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			img.indexToPhysical[r][c] = indexToPhysical.At(r, c)
			img.physicalToIndex[r][c] = inverse.At(r, c)
		}
	}
	return img, nil
}

// NewFilled creates an image with every voxel set to value
func NewFilled(geom Geometry, value float64) (*Image, error) {
	n := geom.Size[0] * geom.Size[1] * geom.Size[2]
	if n < 0 {
		n = 0
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = value
	}
	return New(geom, data)
}

func identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// Size returns the grid dimensions
func (img *Image) Size() [3]int { return img.size }

// Spacing returns the physical voxel size along each axis
func (img *Image) Spacing() r3.Vec { return img.spacing }

// Origin returns the physical position of voxel (0,0,0)
func (img *Image) Origin() r3.Vec { return img.origin }

// MinSpacing returns the smallest voxel size along any axis
func (img *Image) MinSpacing() float64 {
	return math.Min(img.spacing.X, math.Min(img.spacing.Y, img.spacing.Z))
}

// At returns the voxel value at grid index (x, y, z). The index must be inside the grid.
func (img *Image) At(x, y, z int) float64 {
	return img.data[img.offset(x, y, z)]
}

func (img *Image) offset(x, y, z int) int {
	return (z*img.size[1]+y)*img.size[0] + x
}

// ContinuousIndex maps a physical point to continuous grid coordinates
func (img *Image) ContinuousIndex(p r3.Vec) r3.Vec {
	d := r3.Sub(p, img.origin)
	m := &img.physicalToIndex
	return r3.Vec{
		X: m[0][0]*d.X + m[0][1]*d.Y + m[0][2]*d.Z,
		Y: m[1][0]*d.X + m[1][1]*d.Y + m[1][2]*d.Z,
		Z: m[2][0]*d.X + m[2][1]*d.Y + m[2][2]*d.Z,
	}
}

// IsInsideBuffer reports whether a continuous index falls within the voxel grid,
// where each voxel covers [i-0.5, i+0.5).
func (img *Image) IsInsideBuffer(ci r3.Vec) bool {
	c := [3]float64{ci.X, ci.Y, ci.Z}
	for axis := 0; axis < 3; axis++ {
		if !(c[axis] >= -0.5 && c[axis] < float64(img.size[axis])-0.5) {
			return false
		}
	}
	return true
}

// PhysicalPoint maps a (possibly fractional) grid index to its physical position
func (img *Image) PhysicalPoint(ci r3.Vec) r3.Vec {
	m := &img.indexToPhysical
	return r3.Add(img.origin, r3.Vec{
		X: m[0][0]*ci.X + m[0][1]*ci.Y + m[0][2]*ci.Z,
		Y: m[1][0]*ci.X + m[1][1]*ci.Y + m[1][2]*ci.Z,
		Z: m[2][0]*ci.X + m[2][1]*ci.Y + m[2][2]*ci.Z,
	})
}
