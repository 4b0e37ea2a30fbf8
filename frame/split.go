package frame

import (
	"math"
	"math/rand"
	"sort"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

// Split partitions the frame into two row-disjoint frames, assigning each
// row to the first with probability frac using a PRNG seeded with seed.
// Row order within each part follows the original frame, so repeated
// splits with the same seed are identical.
func (f *Frame) Split(frac float64, seed int64) (*Frame, *Frame, error) {
	if frac <= 0 || frac >= 1 {
		return nil, nil, errors.NewValueError("frame.Split", "fraction must be in (0, 1)")
	}
	rng := rand.New(rand.NewSource(seed))
	var left, right []int
	for r := 0; r < f.rows; r++ {
		if rng.Float64() < frac {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return f.subset(left), f.subset(right), nil
}

// CutCounts buckets a column's non-missing values into the half-open
// intervals (edges[i], edges[i+1]] and returns the population per bucket.
// The lowest edge is included in the first bucket; values outside the
// edges are dropped. Edges must be non-decreasing.
func (f *Frame) CutCounts(name string, edges []float64) ([]int, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if len(edges) < 2 {
		return nil, errors.NewValueError("frame.CutCounts", "need at least two edges")
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] < edges[i-1] {
			return nil, errors.NewValueError("frame.CutCounts", "edges must be non-decreasing")
		}
	}

	counts := make([]int, len(edges)-1)
	for _, v := range col.Values {
		if math.IsNaN(v) || v < edges[0] || v > edges[len(edges)-1] {
			continue
		}
		if v == edges[0] {
			counts[0]++
			continue
		}
		// First edge >= v; the value falls in the bucket ending there.
		idx := sort.SearchFloat64s(edges, v)
		if idx > 0 && idx <= len(counts) {
			counts[idx-1]++
		}
	}
	return counts, nil
}
