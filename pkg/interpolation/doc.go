// Package interpolation samples volumetric images at arbitrary physical
// coordinates using nearest-neighbour or trilinear reconstruction.
package interpolation
