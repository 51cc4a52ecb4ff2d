// Package telemetry provides the default, non-noop Logger and Tracer
// implementations the core's parallex.Logger/parallex.Tracer interfaces are
// built against, the way the teacher's observability.go provides
// concrete observer implementations behind its own interface pair.
package telemetry

import (
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"

	"github.com/forgekit/parallex"
)

// Logger adapts a github.com/joeycumines/logiface logger (backed by
// logiface-slog, which in turn wraps log/slog) to parallex.Logger. Key/value
// pairs are forwarded via logiface.ArgFields, the pattern demonstrated
// throughout logiface-slog's own example_test.go.
type Logger struct {
	l      *logiface.Logger[*islog.Event]
	fields []any
}

// NewLogger constructs a Logger writing JSON lines to w (os.Stdout if w is
// nil) at the given minimum slog.Level.
func NewLogger(w *os.File, level slog.Level) parallex.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	logger := islog.L.New(islog.L.WithSlogHandler(handler))
	return &Logger{l: logger}
}

func (l *Logger) With(kv ...any) parallex.Logger {
	return &Logger{l: l.l, fields: append(append([]any{}, l.fields...), kv...)}
}

func (l *Logger) Info(msg string, kv ...any) {
	b := l.l.Info()
	b = logiface.ArgFields[any](b, nil, l.fields...)
	b = logiface.ArgFields[any](b, nil, kv...)
	b.Log(msg)
}

func (l *Logger) Error(msg string, kv ...any) {
	b := l.l.Err()
	b = logiface.ArgFields[any](b, nil, l.fields...)
	b = logiface.ArgFields[any](b, nil, kv...)
	b.Log(msg)
}

var _ parallex.Logger = (*Logger)(nil)
