package parallex

// Tracer and TraceSpan mirror the teacher's api.go pair, kept as the core's
// opaque tracing contract. The default implementation (internal/telemetry)
// backs this with a real go.opentelemetry.io/otel tracer.
type Tracer interface {
	Start(ctx Context, name string) (Context, TraceSpan)
}

type TraceSpan interface {
	SetAttribute(key string, value any)
	RecordError(err error)
	End()
}

type noopTracer struct{}

func (noopTracer) Start(ctx Context, _ string) (Context, TraceSpan) { return ctx, noopSpan{} }

type noopSpan struct{}

func (noopSpan) SetAttribute(string, any) {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) End()                     {}

// NoopTracer returns a Tracer that produces no spans, used as the default
// when a Scheduler is built without WithTracer.
func NoopTracer() Tracer { return noopTracer{} }
