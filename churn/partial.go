package churn

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

const (
	// numericBins is the partial-dependence grid size for continuous
	// features.
	numericBins = 20

	// factorBinHeadroom is the extra bin requested beyond the level count
	// for factor features. The grid itself has exactly one point per
	// level; the headroom only caps the request, as in the original model
	// wrapper.
	factorBinHeadroom = 1
)

// partialDependence returns the grid and the model's mean response over
// it for one feature. With a row index the curve is that row's ICE curve;
// with AllRows the response is averaged over the whole test frame. The
// engine has no partial-dependence endpoint, so the curve is produced by
// overriding the feature column and re-querying the fitted model; the
// predictions themselves stay inside the engine.
func (p *Predictor) partialDependence(feature string, row int) ([]float64, []float64, error) {
	col, err := p.test.Column(feature)
	if err != nil {
		return nil, nil, err
	}
	featureIdx := -1
	for i, name := range p.features {
		if name == feature {
			featureIdx = i
			break
		}
	}
	if featureIdx < 0 {
		return nil, nil, errors.NewColumnNotFoundError(feature, "feature set")
	}

	var grid []float64
	if col.IsFactor() {
		nbins := col.NLevels() + factorBinHeadroom
		for level := 0; level < col.NLevels() && level < nbins; level++ {
			grid = append(grid, float64(level))
		}
	} else {
		min, max := col.Min(), col.Max()
		if math.IsNaN(min) || math.IsNaN(max) {
			return nil, nil, nil
		}
		grid = linspace(min, max, numericBins)
	}

	var base mat.Matrix = p.testX
	if row != AllRows {
		if err := p.checkRow(row); err != nil {
			return nil, nil, err
		}
		base = p.testX.RowView(row).T()
	}
	work := mat.DenseCopyOf(base)
	rows, _ := work.Dims()

	effects := make([]float64, len(grid))
	for g, value := range grid {
		for r := 0; r < rows; r++ {
			work.Set(r, featureIdx, value)
		}
		proba, err := p.clf.PredictProba(work)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "partial dependence for %q", feature)
		}
		n, cols := proba.Dims()
		responses := make([]float64, n)
		for r := 0; r < n; r++ {
			responses[r] = proba.At(r, cols-1)
		}
		effects[g] = meanColumn(responses)
	}
	return grid, effects, nil
}

// linspace returns n evenly spaced points from min to max inclusive.
func linspace(min, max float64, n int) []float64 {
	points := make([]float64, n)
	if n == 1 || min == max {
		for i := range points {
			points[i] = min
		}
		return points
	}
	step := (max - min) / float64(n-1)
	for i := range points {
		points[i] = min + float64(i)*step
	}
	points[n-1] = max
	return points
}
