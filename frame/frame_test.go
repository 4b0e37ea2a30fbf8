package frame

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadCSVTypeInference(t *testing.T) {
	path := writeCSV(t, "tenure,contract,churn\n"+
		"12.5,month-to-month,yes\n"+
		",two-year,no\n"+
		"48,one-year,no\n")

	f, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, []string{"tenure", "contract", "churn"}, f.Names())

	tenure, err := f.Column("tenure")
	require.NoError(t, err)
	assert.False(t, tenure.IsFactor())
	assert.Equal(t, 12.5, tenure.Values[0])
	assert.True(t, math.IsNaN(tenure.Values[1]))

	contract, err := f.Column("contract")
	require.NoError(t, err)
	require.True(t, contract.IsFactor())
	assert.Equal(t, []string{"month-to-month", "one-year", "two-year"}, contract.Levels)
	assert.Equal(t, 0.0, contract.Values[0])
	assert.Equal(t, 2.0, contract.Values[1])
	assert.Equal(t, 1.0, contract.Values[2])
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var dsErr *errors.DatasetError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, "read", dsErr.Op)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	path := writeCSV(t, "a,b\n")
	_, err := ReadCSV(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyFrame))
}

func TestAsFactor(t *testing.T) {
	path := writeCSV(t, "plan\n2\n1\n2\n3\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	require.NoError(t, f.AsFactor("plan"))
	plan, err := f.Column("plan")
	require.NoError(t, err)
	require.True(t, plan.IsFactor())
	assert.Equal(t, []string{"1", "2", "3"}, plan.Levels)
	assert.Equal(t, []float64{1, 0, 1, 2}, plan.Values)

	// Re-casting a factor is a no-op.
	require.NoError(t, f.AsFactor("plan"))
	assert.Equal(t, []string{"1", "2", "3"}, plan.Levels)
}

func TestCastFactorUnseenBecomesMissing(t *testing.T) {
	path := writeCSV(t, "plan\n1\n2\n9\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	require.NoError(t, f.CastFactor("plan", []string{"1", "2"}))
	plan, err := f.Column("plan")
	require.NoError(t, err)
	assert.Equal(t, 0.0, plan.Values[0])
	assert.Equal(t, 1.0, plan.Values[1])
	assert.True(t, math.IsNaN(plan.Values[2]))
}

func TestColumnNotFound(t *testing.T) {
	path := writeCSV(t, "a\n1\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	_, err = f.Column("missing")
	var cErr *errors.ColumnNotFoundError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "missing", cErr.Column)
}

func TestMinMaxOmitMissing(t *testing.T) {
	path := writeCSV(t, "v\n5\n\n1\n9\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	v, err := f.Column("v")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Min())
	assert.Equal(t, 9.0, v.Max())

	empty := &Column{Name: "e", Values: []float64{math.NaN(), math.NaN()}}
	assert.True(t, math.IsNaN(empty.Min()))
	assert.True(t, math.IsNaN(empty.Max()))
}

func TestLevelCounts(t *testing.T) {
	path := writeCSV(t, "c\nx\ny\nx\n\nx\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	c, err := f.Column("c")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, c.LevelCounts())

	n := &Column{Name: "n", Kind: Numeric, Values: []float64{1}}
	assert.Nil(t, n.LevelCounts())
}

func TestCutCounts(t *testing.T) {
	path := writeCSV(t, "v\n0\n0.5\n1\n1.5\n2\n\n5\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	counts, err := f.CutCounts("v", []float64{0, 1, 2})
	require.NoError(t, err)
	// Lowest edge included in the first bucket; 5 and NaN fall outside.
	assert.Equal(t, []int{3, 2}, counts)
}

func TestCutCountsBadEdges(t *testing.T) {
	path := writeCSV(t, "v\n1\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	_, err = f.CutCounts("v", []float64{1})
	require.Error(t, err)
	_, err = f.CutCounts("v", []float64{2, 1})
	require.Error(t, err)
}

func TestSplitDeterministic(t *testing.T) {
	cols := []*Column{{Name: "v", Kind: Numeric, Values: make([]float64, 100)}}
	for i := range cols[0].Values {
		cols[0].Values[i] = float64(i)
	}
	f, err := New(cols)
	require.NoError(t, err)

	left1, right1, err := f.Split(0.8, 1234)
	require.NoError(t, err)
	left2, right2, err := f.Split(0.8, 1234)
	require.NoError(t, err)

	assert.Equal(t, 100, left1.NumRows()+right1.NumRows())
	assert.Equal(t, left1.NumRows(), left2.NumRows())

	l1, _ := left1.Column("v")
	l2, _ := left2.Column("v")
	assert.Equal(t, l1.Values, l2.Values)
	r1, _ := right1.Column("v")
	r2, _ := right2.Column("v")
	assert.Equal(t, r1.Values, r2.Values)
}

func TestSplitBadFraction(t *testing.T) {
	f, err := New([]*Column{{Name: "v", Kind: Numeric, Values: []float64{1}}})
	require.NoError(t, err)

	_, _, err = f.Split(0, 1)
	require.Error(t, err)
	_, _, err = f.Split(1, 1)
	require.Error(t, err)
}

func TestMatrixAndVector(t *testing.T) {
	path := writeCSV(t, "a,b,y\n1,x,0\n2,z,1\n")
	f, err := ReadCSV(path)
	require.NoError(t, err)

	m, err := f.Matrix([]string{"a", "b"})
	require.NoError(t, err)
	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 0.0, m.At(0, 1)) // level index of "x"
	assert.Equal(t, 1.0, m.At(1, 1)) // level index of "z"

	v, err := f.Vector("y")
	require.NoError(t, err)
	rows, cols = v.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1.0, v.At(1, 0))

	_, err = f.Matrix([]string{"a", "missing"})
	require.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New([]*Column{
		{Name: "a", Values: []float64{1, 2}},
		{Name: "b", Values: []float64{1}},
	})
	require.Error(t, err)

	_, err = New([]*Column{
		{Name: "a", Values: []float64{1}},
		{Name: "a", Values: []float64{2}},
	})
	require.Error(t, err)
}
