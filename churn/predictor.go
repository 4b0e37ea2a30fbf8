// Package churn implements the churn-risk prediction facade. It shapes
// tabular data in and out of the gradient-boosting engine
// (scigo's LightGBM); training, probability prediction, and SHAP
// contribution attribution all run inside that engine.
package churn

import (
	"math"
	"sort"
	"time"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"

	"github.com/UjjwalMahar/churn-risk/frame"
	"github.com/UjjwalMahar/churn-risk/pkg/errors"
	"github.com/UjjwalMahar/churn-risk/pkg/log"
)

// AllRows selects the population aggregate instead of a single test row.
const AllRows = -1

// defaultSeed matches the seed the original model was trained with.
const defaultSeed = 1234

// validationFraction is the share of the training data kept for fitting;
// the remainder is scored after training.
const validationFraction = 0.8

// Config describes the datasets and the model knobs for a predictor.
type Config struct {
	TrainPath    string
	TestPath     string
	TargetColumn string

	// CategoricalColumns are cast to factors on both frames before
	// training; the test frame reuses the training level lists.
	CategoricalColumns []string

	// DropColumns are excluded from the feature set.
	DropColumns []string

	// Training knobs. Zero values keep the engine defaults.
	NumIterations int
	NumLeaves     int
	LearningRate  float64
	Seed          int64
}

// Contribution is a feature's signed influence on a prediction.
type Contribution struct {
	Feature string
	Value   float64
}

// Predictor owns the loaded frames, the fitted model, and the cached
// test-set churn probabilities and contribution matrix. It is read-only
// after construction and must not be shared across goroutines during it.
type Predictor struct {
	cfg      Config
	train    *frame.Frame
	test     *frame.Frame
	features []string

	clf   *lightgbm.LGBMClassifier
	testX *mat.Dense

	probs       []float64
	contribs    *mat.Dense
	valAccuracy float64

	logger log.Logger
}

// New loads both datasets, fits a boosted-tree classifier on the training
// features, and caches churn probabilities and per-feature contributions
// for every test row. Loader and engine failures propagate wrapped with
// their operation context.
func New(cfg Config) (*Predictor, error) {
	if cfg.TrainPath == "" || cfg.TestPath == "" {
		return nil, errors.NewValueError("churn.New", "train and test dataset paths are required")
	}
	if cfg.TargetColumn == "" {
		return nil, errors.NewValueError("churn.New", "target column is required")
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaultSeed
	}

	p := &Predictor{
		cfg:    cfg,
		logger: log.GetLoggerWithName("churn.predictor"),
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	if err := p.fit(); err != nil {
		return nil, err
	}
	if err := p.score(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Predictor) load() error {
	train, err := frame.ReadCSV(p.cfg.TrainPath)
	if err != nil {
		return err
	}
	test, err := frame.ReadCSV(p.cfg.TestPath)
	if err != nil {
		return err
	}

	for _, name := range p.cfg.CategoricalColumns {
		if err := train.AsFactor(name); err != nil {
			return errors.Wrapf(err, "casting %q on train frame", name)
		}
		col, err := train.Column(name)
		if err != nil {
			return err
		}
		if err := test.CastFactor(name, col.Levels); err != nil {
			return errors.Wrapf(err, "casting %q on test frame", name)
		}
	}

	features, err := featureColumns(train, p.cfg.TargetColumn, p.cfg.DropColumns)
	if err != nil {
		return err
	}
	for _, name := range features {
		if !test.Has(name) {
			return errors.NewColumnNotFoundError(name, "test")
		}
	}

	p.train = train
	p.test = test
	p.features = features
	p.logger.Info("datasets loaded",
		log.OperationKey, "load",
		log.RowsKey, train.NumRows(),
		log.ColumnsKey, train.NumCols(),
		log.FeaturesKey, len(features),
		log.TargetKey, p.cfg.TargetColumn,
	)
	return nil
}

func featureColumns(train *frame.Frame, target string, drop []string) ([]string, error) {
	if !train.Has(target) {
		return nil, errors.NewColumnNotFoundError(target, "train")
	}
	excluded := map[string]bool{target: true}
	for _, name := range drop {
		if !train.Has(name) {
			return nil, errors.NewColumnNotFoundError(name, "train")
		}
		excluded[name] = true
	}
	var features []string
	for _, name := range train.Names() {
		if !excluded[name] {
			features = append(features, name)
		}
	}
	if len(features) == 0 {
		return nil, errors.NewValueError("churn.New", "no feature columns left after drops")
	}
	return features, nil
}

func (p *Predictor) fit() error {
	fitFrame, validFrame, err := p.train.Split(validationFraction, p.cfg.Seed)
	if err != nil {
		return err
	}
	if fitFrame.NumRows() == 0 {
		return errors.Wrap(errors.ErrEmptyFrame, "training split")
	}

	fitX, err := fitFrame.Matrix(p.features)
	if err != nil {
		return err
	}
	fitY, err := fitFrame.Vector(p.cfg.TargetColumn)
	if err != nil {
		return err
	}

	clf := lightgbm.NewLGBMClassifier().
		WithRandomState(int(p.cfg.Seed)).
		WithDeterministic(true)
	if p.cfg.NumIterations > 0 {
		clf = clf.WithNumIterations(p.cfg.NumIterations)
	}
	if p.cfg.NumLeaves > 0 {
		clf = clf.WithNumLeaves(p.cfg.NumLeaves)
	}
	if p.cfg.LearningRate > 0 {
		clf = clf.WithLearningRate(p.cfg.LearningRate)
	}
	clf.CategoricalFeatures = p.factorFeatureIndices()

	start := time.Now()
	if err := clf.Fit(fitX, fitY); err != nil {
		return errors.Wrap(err, "fitting churn model")
	}
	p.clf = clf

	p.valAccuracy = math.NaN()
	if validFrame.NumRows() > 0 {
		validX, err := validFrame.Matrix(p.features)
		if err != nil {
			return err
		}
		validY, err := validFrame.Vector(p.cfg.TargetColumn)
		if err != nil {
			return err
		}
		acc, err := clf.Score(validX, validY)
		if err != nil {
			return errors.Wrap(err, "scoring validation split")
		}
		p.valAccuracy = acc
	}

	p.logger.Info("model trained",
		log.OperationKey, "fit",
		log.ModelNameKey, "LGBMClassifier",
		log.RowsKey, fitFrame.NumRows(),
		log.FeaturesKey, len(p.features),
		log.AccuracyKey, p.valAccuracy,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *Predictor) factorFeatureIndices() []int {
	var idx []int
	for i, name := range p.features {
		col, err := p.train.Column(name)
		if err == nil && col.IsFactor() {
			idx = append(idx, i)
		}
	}
	return idx
}

// score caches the churn probability and the contribution row for every
// test example. The engine's base value is not part of the matrix, so the
// bias term is excluded by construction.
func (p *Predictor) score() error {
	testX, err := p.test.Matrix(p.features)
	if err != nil {
		return err
	}
	p.testX = testX

	proba, err := p.clf.PredictProba(testX)
	if err != nil {
		return errors.Wrap(err, "predicting test frame")
	}
	rows, cols := proba.Dims()
	p.probs = make([]float64, rows)
	for i := 0; i < rows; i++ {
		p.probs[i] = proba.At(i, cols-1)
	}

	shap, err := p.clf.PredictSHAP(testX)
	if err != nil {
		return errors.Wrap(err, "computing contributions")
	}
	p.contribs = shap.Values

	p.logger.Info("test frame scored",
		log.OperationKey, "predict",
		log.RowsKey, rows,
		log.FeaturesKey, len(p.features),
	)
	return nil
}

// NumTestRows returns the number of rows in the test frame.
func (p *Predictor) NumTestRows() int {
	return p.test.NumRows()
}

// Features returns the feature column names in training order.
func (p *Predictor) Features() []string {
	return append([]string(nil), p.features...)
}

// ValidationAccuracy returns the held-out split accuracy measured after
// training, or NaN when the split had no rows.
func (p *Predictor) ValidationAccuracy() float64 {
	return p.valAccuracy
}

// ChurnRate returns the churn probability of a test row as a percentage
// rounded to two decimals, or the mean over all rows for AllRows.
func (p *Predictor) ChurnRate(row int) (float64, error) {
	if row == AllRows {
		sum := 0.0
		for _, v := range p.probs {
			sum += v
		}
		return round2(sum / float64(len(p.probs)) * 100), nil
	}
	if err := p.checkRow(row); err != nil {
		return 0, err
	}
	return round2(p.probs[row] * 100), nil
}

// SHAP returns one (feature, contribution) pair per feature for the row,
// or for the column-wise mean over all rows for AllRows, sorted ascending
// by signed value.
func (p *Predictor) SHAP(row int) ([]Contribution, error) {
	values, err := p.contributionRow(row)
	if err != nil {
		return nil, err
	}
	pairs := make([]Contribution, len(p.features))
	for i, name := range p.features {
		pairs[i] = Contribution{Feature: name, Value: values[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Value < pairs[j].Value
	})
	return pairs, nil
}

// FeatureImportance returns the gain-based importance per feature,
// descending.
func (p *Predictor) FeatureImportance() []Contribution {
	gains := p.clf.GetFeatureImportance("gain")
	pairs := make([]Contribution, len(p.features))
	for i, name := range p.features {
		pairs[i] = Contribution{Feature: name}
		if i < len(gains) {
			pairs[i].Value = gains[i]
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Value > pairs[j].Value
	})
	return pairs
}

// SaveModel writes the fitted ensemble to path in LightGBM text format.
func (p *Predictor) SaveModel(path string) error {
	if err := p.clf.Model.SaveToFile(path); err != nil {
		return errors.Wrapf(err, "saving model to %q", path)
	}
	return nil
}

// contributionRow returns the contribution vector for a row, or the
// column-wise mean for AllRows, in feature order.
func (p *Predictor) contributionRow(row int) ([]float64, error) {
	rows, cols := p.contribs.Dims()
	if row == AllRows {
		means := make([]float64, cols)
		for j := 0; j < cols; j++ {
			sum := 0.0
			for i := 0; i < rows; i++ {
				sum += p.contribs.At(i, j)
			}
			means[j] = sum / float64(rows)
		}
		return means, nil
	}
	if err := p.checkRow(row); err != nil {
		return nil, err
	}
	return mat.Row(nil, row, p.contribs), nil
}

func (p *Predictor) checkRow(row int) error {
	if row < 0 || row >= p.test.NumRows() {
		return errors.NewRowIndexError(row, p.test.NumRows())
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
