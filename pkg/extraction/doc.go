// Package extraction classifies the fibers of a tractogram against a set of
// region-of-interest images and extracts the matching ("positive") and
// non-matching ("negative") fibers as new bundles.
//
// Two classification modes are supported. Overlap mode counts how many points
// of a fiber lie inside an ROI and compares that fraction against a threshold.
// Endpoints mode only looks at the first and last point of each fiber.
// ROI images are interpreted either as scalar maps (inside means value above
// a threshold) or as label maps (inside means value is one of a label set).
//
// Fibers are classified in parallel; the resulting index lists are always in
// ascending fiber order, independent of the number of workers.
package extraction
