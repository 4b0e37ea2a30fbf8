// Package frame implements the small column-oriented dataset frame the
// churn predictor feeds to the modeling engine: CSV loading with type
// inference, factor (categorical) casting, column statistics, interval
// bucketing, seeded splitting, and export to gonum matrices.
//
// A frame is immutable after load except for factor re-typing. Missing
// values are NaN in every column kind; a factor column stores level
// indices, with the level names kept on the column.
package frame

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

// Kind is the storage type of a column.
type Kind int

const (
	// Numeric columns hold continuous values.
	Numeric Kind = iota
	// Factor columns hold discrete levels encoded as level indices.
	Factor
)

// Column is a single named column. Values holds the raw numeric values
// for Numeric columns and level indices for Factor columns; NaN marks a
// missing value in both cases.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64
	Levels []string // level names for Factor columns, index-aligned
}

// IsFactor reports whether the column is categorical.
func (c *Column) IsFactor() bool {
	return c.Kind == Factor
}

// NLevels returns the number of factor levels, 0 for numeric columns.
func (c *Column) NLevels() int {
	return len(c.Levels)
}

// Min returns the smallest non-missing value, or NaN if every value is
// missing.
func (c *Column) Min() float64 {
	min := math.NaN()
	for _, v := range c.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest non-missing value, or NaN if every value is
// missing.
func (c *Column) Max() float64 {
	max := math.NaN()
	for _, v := range c.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}

// LevelCounts returns the population per factor level, index-aligned with
// Levels. Numeric columns return nil.
func (c *Column) LevelCounts() []int {
	if !c.IsFactor() {
		return nil
	}
	counts := make([]int, len(c.Levels))
	for _, v := range c.Values {
		if math.IsNaN(v) {
			continue
		}
		idx := int(v)
		if idx >= 0 && idx < len(counts) {
			counts[idx]++
		}
	}
	return counts
}

// Frame is a set of equal-length named columns.
type Frame struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a frame from columns, which must be non-empty, equal length,
// and uniquely named.
func New(cols []*Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, errors.NewValueError("frame.New", "no columns")
	}
	rows := len(cols[0].Values)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if len(c.Values) != rows {
			return nil, errors.NewValueError("frame.New",
				"column "+c.Name+" length differs from first column")
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValueError("frame.New", "duplicate column "+c.Name)
		}
		index[c.Name] = i
	}
	return &Frame{cols: cols, index: index, rows: rows}, nil
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return f.rows
}

// NumCols returns the column count.
func (f *Frame) NumCols() int {
	return len(f.cols)
}

// Names returns the column names in load order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the frame contains a column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) (*Column, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError(name, "")
	}
	return f.cols[i], nil
}

// AsFactor re-types a column as a factor over its distinct observed
// values. Numeric values become levels through their shortest decimal
// form, so integer-coded categories keep readable level names. A column
// that is already a factor is left unchanged.
func (f *Frame) AsFactor(name string) error {
	col, err := f.Column(name)
	if err != nil {
		return err
	}
	if col.IsFactor() {
		return nil
	}
	seen := map[string]bool{}
	var levels []string
	for _, v := range col.Values {
		if math.IsNaN(v) {
			continue
		}
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !seen[s] {
			seen[s] = true
			levels = append(levels, s)
		}
	}
	sortLevels(levels)
	return f.CastFactor(name, levels)
}

// CastFactor re-types a column as a factor with a caller-supplied level
// list. Values not present in levels become missing. Passing the level
// list of another frame's column keeps encodings aligned across frames.
func (f *Frame) CastFactor(name string, levels []string) error {
	col, err := f.Column(name)
	if err != nil {
		return err
	}
	lookup := make(map[string]int, len(levels))
	for i, l := range levels {
		lookup[l] = i
	}
	encoded := make([]float64, len(col.Values))
	for i, v := range col.Values {
		if math.IsNaN(v) {
			encoded[i] = math.NaN()
			continue
		}
		var key string
		if col.IsFactor() {
			key = col.Levels[int(v)]
		} else {
			key = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if idx, ok := lookup[key]; ok {
			encoded[i] = float64(idx)
		} else {
			encoded[i] = math.NaN()
		}
	}
	col.Kind = Factor
	col.Values = encoded
	col.Levels = append([]string(nil), levels...)
	return nil
}

// Matrix exports the named columns as a dense row-major matrix, factors
// as their level indices.
func (f *Frame) Matrix(names []string) (*mat.Dense, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	data := make([]float64, f.rows*len(cols))
	for r := 0; r < f.rows; r++ {
		for j, c := range cols {
			data[r*len(cols)+j] = c.Values[r]
		}
	}
	return mat.NewDense(f.rows, len(cols), data), nil
}

// Vector exports a single column as an n-by-1 matrix.
func (f *Frame) Vector(name string) (*mat.Dense, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(f.rows, 1, append([]float64(nil), col.Values...)), nil
}

// subset builds a frame holding the given rows, sharing level lists.
func (f *Frame) subset(rows []int) *Frame {
	cols := make([]*Column, len(f.cols))
	for i, c := range f.cols {
		values := make([]float64, len(rows))
		for j, r := range rows {
			values[j] = c.Values[r]
		}
		cols[i] = &Column{Name: c.Name, Kind: c.Kind, Values: values, Levels: c.Levels}
	}
	index := make(map[string]int, len(f.index))
	for k, v := range f.index {
		index[k] = v
	}
	return &Frame{cols: cols, index: index, rows: len(rows)}
}
