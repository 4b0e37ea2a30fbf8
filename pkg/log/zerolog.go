package log

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface. Values
// implementing zerolog.LogObjectMarshaler (the pkg/errors types do) are
// logged as structured objects.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a Logger that writes zerolog JSON lines to w.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// NewConsoleLogger returns a Logger that writes human-readable zerolog
// output to w. Intended for CLI use.
func NewConsoleLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w}).
		Level(toZerologLevel(level)).
		With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(z.zl.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(z.zl.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(z.zl.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...any) { z.emit(z.zl.Error(), msg, fields) }

func (z *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	appendFields(event, fields)
	event.Msg(msg)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.zl.GetLevel()
}

func appendFields(event *zerolog.Event, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			event.Object(key, v)
		case error:
			event.AnErr(key, v)
		default:
			event.Interface(key, v)
		}
	}
}
