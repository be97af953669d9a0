package extraction

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Result holds the fiber index lists produced by one classification pass.
// Every list is in ascending fiber order.
type Result struct {
	// Positives holds one index list per ROI, in ROI input order
	Positives [][]int

	// Negatives holds the fibers that matched no ROI
	Negatives []int

	// NumFibers is the number of fibers that were classified
	NumFibers int
}

// PositiveSets returns the positive index lists as bitmaps, one per ROI
func (r *Result) PositiveSets() []*roaring.Bitmap {
	sets := make([]*roaring.Bitmap, len(r.Positives))
	for m, ids := range r.Positives {
		sets[m] = toBitmap(ids)
	}
	return sets
}

// Matched returns the fibers that are positive for at least one ROI
func (r *Result) Matched() *roaring.Bitmap {
	return roaring.FastOr(r.PositiveSets()...)
}

// CoOccurrence returns a symmetric matrix whose entry [a][b] is the number of
// fibers positive for both ROI a and ROI b; the diagonal holds per-ROI counts.
func (r *Result) CoOccurrence() [][]uint64 {
	sets := r.PositiveSets()
	matrix := make([][]uint64, len(sets))
	for a := range sets {
		matrix[a] = make([]uint64, len(sets))
		for b := range sets {
			if b < a {
				matrix[a][b] = matrix[b][a]
				continue
			}
			matrix[a][b] = sets[a].AndCardinality(sets[b])
		}
	}
	return matrix
}

// CheckPartition verifies that every fiber is either negative or positive for
// at least one ROI, never both, and that no list holds an index twice.
func (r *Result) CheckPartition() error {
	matched := roaring.New()
	for m, ids := range r.Positives {
		set := roaring.New()
		for _, id := range ids {
			if id < 0 || id >= r.NumFibers {
				return fmt.Errorf("positive list %d: fiber %d out of range", m, id)
			}
			if !set.CheckedAdd(uint32(id)) {
				return fmt.Errorf("positive list %d: fiber %d listed twice", m, id)
			}
		}
		matched.Or(set)
	}

	negatives := roaring.New()
	for _, id := range r.Negatives {
		if id < 0 || id >= r.NumFibers {
			return fmt.Errorf("negative list: fiber %d out of range", id)
		}
		if !negatives.CheckedAdd(uint32(id)) {
			return fmt.Errorf("negative list: fiber %d listed twice", id)
		}
	}

	if both := roaring.And(matched, negatives); !both.IsEmpty() {
		return fmt.Errorf("%d fibers are both positive and negative", both.GetCardinality())
	}
	if covered := matched.GetCardinality() + negatives.GetCardinality(); covered != uint64(r.NumFibers) {
		return fmt.Errorf("%d of %d fibers classified", covered, r.NumFibers)
	}
	return nil
}

func toBitmap(ids []int) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		bm.Add(uint32(id))
	}
	return bm
}
