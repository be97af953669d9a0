package extraction

import (
	"fmt"

	"tractfilter/pkg/bundle"
)

// CreateFromIndices builds a new bundle with the fibers of source at indices,
// in order, keeping duplicates and weights. source is not modified.
func CreateFromIndices(source *bundle.Bundle, indices []int) (*bundle.Bundle, error) {
	b, err := source.CreateFromIndices(indices)
	if err != nil {
		return nil, fmt.Errorf("failed to extract fibers: %w", err)
	}
	return b, nil
}

// createBundles materialises the classification as bundles of source fibers
func createBundles(source *bundle.Bundle, result *Result, noPositives, noNegatives bool) ([]*bundle.Bundle, *bundle.Bundle, error) {
	var negatives *bundle.Bundle
	if !noNegatives {
		b, err := CreateFromIndices(source, result.Negatives)
		if err != nil {
			return nil, nil, err
		}
		negatives = b
	}

	positives := []*bundle.Bundle{}
	if !noPositives {
		for m, ids := range result.Positives {
			b, err := CreateFromIndices(source, ids)
			if err != nil {
				return nil, nil, fmt.Errorf("ROI %d: %w", m, err)
			}
			positives = append(positives, b)
		}
	}
	return positives, negatives, nil
}
