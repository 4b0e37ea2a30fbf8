package errors

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetError(t *testing.T) {
	cause := New("no such file")
	err := NewDatasetError("/data/train.csv", "read", cause)

	assert.Contains(t, err.Error(), `read dataset "/data/train.csv"`)
	assert.True(t, Is(err, cause))

	var dsErr *DatasetError
	require.True(t, As(err, &dsErr))
	assert.Equal(t, "/data/train.csv", dsErr.Path)
}

func TestColumnNotFoundError(t *testing.T) {
	err := NewColumnNotFoundError("tenure", "train")
	assert.Contains(t, err.Error(), `column "tenure" not found in train frame`)

	bare := NewColumnNotFoundError("tenure", "")
	assert.Contains(t, bare.Error(), `column "tenure" not found`)

	var cErr *ColumnNotFoundError
	require.True(t, As(err, &cErr))
	assert.Equal(t, "tenure", cErr.Column)
}

func TestRowIndexError(t *testing.T) {
	err := NewRowIndexError(50, 40)
	assert.Contains(t, err.Error(), "row index 50 out of range [0, 40)")

	var rErr *RowIndexError
	require.True(t, As(err, &rErr))
	assert.Equal(t, 50, rErr.Index)
	assert.Equal(t, 40, rErr.Rows)
}

func TestValueError(t *testing.T) {
	err := NewValueError("churn.New", "target column is required")
	assert.Equal(t, "churn: churn.New: target column is required", err.Error())
}

func TestWrapKeepsChain(t *testing.T) {
	err := NewColumnNotFoundError("plan", "test")
	wrapped := Wrapf(err, "casting %q", "plan")

	var cErr *ColumnNotFoundError
	assert.True(t, As(wrapped, &cErr))
	assert.Contains(t, wrapped.Error(), `casting "plan"`)
}

func TestZerologMarshaling(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	err := NewDatasetError("/data/test.csv", "parse", New("bad row"))
	var dsErr *DatasetError
	require.True(t, As(err, &dsErr))

	logger.Error().Object("err", dsErr).Msg("load failed")
	out := buf.String()
	assert.Contains(t, out, `"path":"/data/test.csv"`)
	assert.Contains(t, out, `"op":"parse"`)
	assert.Contains(t, out, `"type":"DatasetError"`)
}
