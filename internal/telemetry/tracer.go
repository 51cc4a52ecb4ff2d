package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgekit/parallex"
)

// attributeFor converts an arbitrary Go value into an OTel attribute,
// falling back to its string form for types the attribute package has no
// direct constructor for (mirrors the teacher's own
// sigNozObserver's best-effort attribute conversion).
func attributeFor(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case uint64:
		return attribute.Int64(key, int64(v))
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

// Tracer adapts a go.opentelemetry.io/otel/trace.Tracer to parallex.Tracer.
type Tracer struct {
	t trace.Tracer
}

// NewTracer wraps an OTel trace.Tracer (typically obtained from a
// TracerProvider via otel.Tracer(name)) as a parallex.Tracer.
func NewTracer(t trace.Tracer) parallex.Tracer {
	return &Tracer{t: t}
}

func (t *Tracer) Start(ctx parallex.Context, name string) (parallex.Context, parallex.TraceSpan) {
	newCtx, span := t.t.Start(ctx, name)
	return newCtx, &Span{span: span}
}

// Span adapts trace.Span to parallex.TraceSpan.
type Span struct {
	span trace.Span
}

func (s *Span) SetAttribute(key string, value any) {
	s.span.SetAttributes(attributeFor(key, value))
}

func (s *Span) RecordError(err error) {
	s.span.RecordError(err)
}

func (s *Span) End() { s.span.End() }

var _ parallex.Tracer = (*Tracer)(nil)
var _ parallex.TraceSpan = (*Span)(nil)
