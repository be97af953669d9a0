// Package phantom generates deterministic synthetic tractography data: a
// bundle of fibers crossing a cubic field of view and spherical ROI images,
// both as binary scalar masks and as a single label map.
package phantom

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"tractfilter/internal/models"
	"tractfilter/pkg/bundle"
	"tractfilter/pkg/volume"
)

// Sphere is a spherical region in physical coordinates
type Sphere struct {
	Center r3.Vec
	Radius float64
}

// Contains reports whether p lies inside the sphere
func (s Sphere) Contains(p r3.Vec) bool {
	return r3.Norm2(r3.Sub(p, s.Center)) <= s.Radius*s.Radius
}

// Options controls phantom generation
type Options struct {
	// NumFibers is the number of fibers to generate
	NumFibers int

	// PointsPerFiber is the number of points on each fiber
	PointsPerFiber int

	// GridSize is the number of voxels along each axis of the ROI images
	GridSize int

	// Spacing is the isotropic voxel size in mm
	Spacing float64

	// Jitter is the standard deviation, in mm, of the noise added to inner fiber points
	Jitter float64

	// Seed makes generation reproducible
	Seed uint64
}

// DefaultOptions returns a small phantom suitable for demos and tests
func DefaultOptions() Options {
	return Options{
		NumFibers:      2000,
		PointsPerFiber: 30,
		GridSize:       40,
		Spacing:        1.5,
		Jitter:         0.3,
		Seed:           1,
	}
}

// Phantom is a generated tractogram with its ROI images
type Phantom struct {
	// Bundle holds the generated fibers
	Bundle *bundle.Bundle

	// Spheres are the ROI regions in physical coordinates
	Spheres []Sphere

	// Masks holds one binary scalar image (1 inside, 0 outside) per sphere
	Masks []*volume.Image

	// Labels is a label map where voxels of sphere i carry label i+1
	Labels *volume.Image
}

// Generate builds a phantom with two spherical ROIs placed on opposite sides
// of the field of view and fibers running between random points on its faces.
func Generate(opts Options) (*Phantom, error) {
	if opts.NumFibers < 0 || opts.PointsPerFiber < 2 || opts.GridSize < 2 || !(opts.Spacing > 0) {
		return nil, errors.New("invalid phantom options")
	}

	geom := volume.Geometry{
		Size:    [3]int{opts.GridSize, opts.GridSize, opts.GridSize},
		Spacing: r3.Vec{X: opts.Spacing, Y: opts.Spacing, Z: opts.Spacing},
	}
	extent := float64(opts.GridSize-1) * opts.Spacing
	mid := extent / 2

	spheres := []Sphere{
		{Center: r3.Vec{X: extent * 0.2, Y: mid, Z: mid}, Radius: extent * 0.15},
		{Center: r3.Vec{X: extent * 0.8, Y: mid, Z: mid}, Radius: extent * 0.15},
	}

	masks := make([]*volume.Image, len(spheres))
	for i, s := range spheres {
		mask, err := SphereMask(geom, s)
		if err != nil {
			return nil, fmt.Errorf("failed to create mask %d: %w", i, err)
		}
		masks[i] = mask
	}

	labels, err := LabelMap(geom, spheres)
	if err != nil {
		return nil, fmt.Errorf("failed to create label map: %w", err)
	}

	src := rand.NewSource(opts.Seed)
	position := distuv.Uniform{Min: 0, Max: extent, Src: src}
	weight := distuv.Uniform{Min: 0.5, Max: 1.5, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: opts.Jitter, Src: src}

	fibers := make([]models.Fiber, opts.NumFibers)
	for i := range fibers {
		// start on the x=0 face, end on the x=extent face
		from := r3.Vec{X: 0, Y: position.Rand(), Z: position.Rand()}
		to := r3.Vec{X: extent, Y: position.Rand(), Z: position.Rand()}

		points := StraightFiber(from, to, opts.PointsPerFiber)
		if opts.Jitter > 0 {
			for j := 1; j < len(points)-1; j++ {
				points[j] = r3.Add(points[j], r3.Vec{X: noise.Rand(), Y: noise.Rand(), Z: noise.Rand()})
			}
		}
		fibers[i] = models.Fiber{Points: points, Weight: weight.Rand()}
	}

	return &Phantom{
		Bundle:  bundle.New(fibers),
		Spheres: spheres,
		Masks:   masks,
		Labels:  labels,
	}, nil
}

// StraightFiber returns n evenly spaced points from a to b
func StraightFiber(a, b r3.Vec, n int) []r3.Vec {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []r3.Vec{a}
	}
	points := make([]r3.Vec, n)
	d := r3.Sub(b, a)
	for i := range points {
		points[i] = r3.Add(a, r3.Scale(float64(i)/float64(n-1), d))
	}
	return points
}

// SphereMask rasterises s into a binary image: voxels whose centre lies
// inside the sphere are 1, all others 0.
func SphereMask(geom volume.Geometry, s Sphere) (*volume.Image, error) {
	return rasterise(geom, func(p r3.Vec) float64 {
		if s.Contains(p) {
			return 1
		}
		return 0
	})
}

// LabelMap rasterises the spheres into one image; voxels of sphere i carry
// label i+1 and later spheres overwrite earlier ones where they intersect.
func LabelMap(geom volume.Geometry, spheres []Sphere) (*volume.Image, error) {
	return rasterise(geom, func(p r3.Vec) float64 {
		label := 0.0
		for i, s := range spheres {
			if s.Contains(p) {
				label = float64(i + 1)
			}
		}
		return label
	})
}

// rasterise evaluates value at every voxel centre of a zero-filled image with geom
func rasterise(geom volume.Geometry, value func(p r3.Vec) float64) (*volume.Image, error) {
	img, err := volume.NewFilled(geom, 0)
	if err != nil {
		return nil, err
	}

	size := img.Size()
	data := make([]float64, size[0]*size[1]*size[2])
	for z := 0; z < size[2]; z++ {
		for y := 0; y < size[1]; y++ {
			for x := 0; x < size[0]; x++ {
				p := img.PhysicalPoint(r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
				data[(z*size[1]+y)*size[0]+x] = value(p)
			}
		}
	}
	return volume.New(geom, data)
}
