package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestStacktraceHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := wrapWithStacktrace(slog.NewJSONHandler(&buf, nil))
	logger := &slogLogger{l: slog.New(handler)}

	logger.Error("load failed", ErrAttrKey, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "load failed")
	assert.Contains(t, out, StacktraceAttrKey)
}

func TestSlogLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := &slogLogger{l: slog.New(slog.NewJSONHandler(&buf, nil))}

	logger.With(ComponentKey, "churn.predictor").Info("fit done", RowsKey, 200)

	out := buf.String()
	assert.Contains(t, out, `"ml.component":"churn.predictor"`)
	assert.Contains(t, out, `"data.rows":200`)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Info("scored", OperationKey, "predict", RowsKey, 40)
	out := buf.String()
	assert.Contains(t, out, `"message":"scored"`)
	assert.Contains(t, out, `"ml.operation":"predict"`)
	assert.Contains(t, out, `"data.rows":40`)

	buf.Reset()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestZerologLoggerEnabled(t *testing.T) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelWarn)
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelWarn))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestZerologLoggerObjectFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	err := errors.NewRowIndexError(99, 40)
	var rErr *errors.RowIndexError
	require.True(t, errors.As(err, &rErr))

	logger.Error("lookup failed", "cause", rErr)
	out := buf.String()
	assert.Contains(t, out, `"row_index":99`)
	assert.Contains(t, out, `"type":"RowIndexError"`)
}

func TestGetLoggerWithName(t *testing.T) {
	var buf bytes.Buffer
	old := GetLogger()
	defer SetDefault(old)
	SetDefault(NewZerologLogger(&buf, LevelInfo))

	GetLoggerWithName("frame.loader").Info("loaded")
	assert.Contains(t, buf.String(), `"ml.component":"frame.loader"`)
}
