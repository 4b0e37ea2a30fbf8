package churn

import (
	"math"
	"strconv"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

// Bin is one partial-dependence point with the test population falling
// into its bucket. Value is the grid value (the level index for factors),
// Label its display form.
type Bin struct {
	Value  float64
	Label  string
	Effect float64
	Count  int
}

// Explanation is a partial-dependence view of one feature, restricted to
// a single row's ICE curve or averaged over the test population.
type Explanation struct {
	Feature string
	Factor  bool
	Bins    []Bin
}

// Empty reports whether the partial-dependence grid was degenerate (a
// feature with no observable values).
func (e *Explanation) Empty() bool {
	return len(e.Bins) == 0
}

// NegativeExplanation explains the feature pushing the prediction down
// the most for the row (or the population mean for AllRows). A non-empty
// feature overrides the automatic selection.
func (p *Predictor) NegativeExplanation(row int, feature string) (*Explanation, error) {
	if feature == "" {
		var err error
		feature, err = p.extremeFeature(row, false)
		if err != nil {
			return nil, err
		}
	}
	return p.explain(feature, row)
}

// PositiveExplanation explains the feature pushing the prediction up the
// most for the row (or the population mean for AllRows). A non-empty
// feature overrides the automatic selection.
func (p *Predictor) PositiveExplanation(row int, feature string) (*Explanation, error) {
	if feature == "" {
		var err error
		feature, err = p.extremeFeature(row, true)
		if err != nil {
			return nil, err
		}
	}
	return p.explain(feature, row)
}

// extremeFeature picks the feature with the smallest (or largest)
// contribution. Ties resolve to the same entry SHAP ordering would show
// first (respectively last).
func (p *Predictor) extremeFeature(row int, max bool) (string, error) {
	values, err := p.contributionRow(row)
	if err != nil {
		return "", err
	}
	best := 0
	for i := 1; i < len(values); i++ {
		if max {
			if values[i] >= values[best] {
				best = i
			}
		} else if values[i] < values[best] {
			best = i
		}
	}
	return p.features[best], nil
}

// explain builds the partial-dependence bins for a feature together with
// the test population per bucket. Counts align with bins explicitly: by
// level identity for factors, and by grid interval for numeric features
// with the trailing interval folded into the last bin, so no population
// is silently dropped.
func (p *Predictor) explain(feature string, row int) (*Explanation, error) {
	if !p.isFeature(feature) {
		return nil, errors.NewValueError("churn.explain",
			"column "+feature+" is not a model feature")
	}
	col, err := p.test.Column(feature)
	if err != nil {
		return nil, err
	}

	grid, effects, err := p.partialDependence(feature, row)
	if err != nil {
		return nil, err
	}
	expl := &Explanation{Feature: feature, Factor: col.IsFactor()}
	if len(grid) == 0 {
		return expl, nil
	}

	if col.IsFactor() {
		counts := col.LevelCounts()
		expl.Bins = make([]Bin, len(grid))
		for i, g := range grid {
			level := int(g)
			expl.Bins[i] = Bin{
				Value:  g,
				Label:  col.Levels[level],
				Effect: effects[i],
				Count:  countAt(counts, level),
			}
		}
		return expl, nil
	}

	edges := make([]float64, 0, len(grid)+1)
	edges = append(edges, col.Min())
	edges = append(edges, grid...)
	if max := col.Max(); max > edges[len(edges)-1] {
		edges[len(edges)-1] = max
	}
	counts, err := p.test.CutCounts(feature, edges)
	if err != nil {
		return nil, err
	}
	expl.Bins = make([]Bin, len(grid))
	for i, g := range grid {
		expl.Bins[i] = Bin{
			Value:  g,
			Label:  strconv.FormatFloat(g, 'g', 6, 64),
			Effect: effects[i],
			Count:  countAt(counts, i),
		}
	}
	return expl, nil
}

func (p *Predictor) isFeature(name string) bool {
	for _, f := range p.features {
		if f == name {
			return true
		}
	}
	return false
}

// countAt returns counts[idx], defaulting to 0 when the bucket does not
// exist.
func countAt(counts []int, idx int) int {
	if idx < 0 || idx >= len(counts) {
		return 0
	}
	return counts[idx]
}

// meanColumn returns the mean of a matrix column, ignoring NaN.
func meanColumn(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
