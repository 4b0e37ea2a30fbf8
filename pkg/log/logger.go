package log

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
)

const (
	// ErrAttrKey is the attribute key used for errors.
	ErrAttrKey = "error"
	// StacktraceAttrKey carries the stack trace extracted from an error.
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps err so the handler can extract its stack trace.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// Setup installs a JSON slog handler writing to stdout at the given level
// and makes it the default for both slog and this package.
func Setup(level Level) {
	opts := slog.HandlerOptions{
		AddSource: true,
		Level:     slog.Level(level),
	}
	handler := wrapWithStacktrace(slog.NewJSONHandler(os.Stdout, &opts))
	l := slog.New(handler)
	slog.SetDefault(l)
	SetDefault(&slogLogger{l: l})
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func newSlogDefault() Logger {
	return &slogLogger{l: slog.New(wrapWithStacktrace(slog.Default().Handler()))}
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

// stacktraceHandler lifts the stack trace out of a cockroachdb/errors error
// logged under ErrAttrKey and emits it as a separate attribute.
type stacktraceHandler struct {
	handler slog.Handler
}

func wrapWithStacktrace(handler slog.Handler) slog.Handler {
	return &stacktraceHandler{handler: handler}
}

func (h *stacktraceHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler.Enabled(ctx, l)
}

func (h *stacktraceHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacktrace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			if err, ok := attr.Value.Any().(error); ok {
				stacktrace = extractStacktrace(err)
			}
			return false
		}
		return true
	})
	if stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	return h.handler.Handle(ctx, r)
}

func (h *stacktraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stacktraceHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *stacktraceHandler) WithGroup(g string) slog.Handler {
	return &stacktraceHandler{handler: h.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) > 0 {
		return details[0]
	}
	return ""
}
