package tracekit

// NoopTracer returns the inert Tracer. Every operation is a no-op that never
// panics; spans it hands out are nil and all Span methods tolerate that.
// An ExecutionContext with no tracer installed reports this tracer, so
// instrumentation keeps working in applications that never configured
// tracing.
func NoopTracer() Tracer { return noopTracer{} }

type noopTracer struct{}

func (noopTracer) StartSpan(string, ...StartOption) *Span { return nil }
func (noopTracer) EndSpan()                               {}
func (noopTracer) CurrentSpan() *Span                     { return nil }
func (noopTracer) AddAttribute(string, any)               {}
func (noopTracer) SpanContext() SpanContext               { return SpanContext{} }
func (noopTracer) Finish()                                {}

func (noopTracer) Do(_ string, fn func(*Span) error, _ ...StartOption) error {
	return fn(nil)
}
