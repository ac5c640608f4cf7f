package tracekit

// Wrap packages task for execution on another execution unit while keeping
// it causally linked to the caller's trace.
//
// At submission time the caller's current SpanContext is captured through
// the tracer's propagator, together with the shared sampler, exporter and
// propagator references. At execution time the returned closure decodes the
// context, builds a fresh Tracer on a fresh ExecutionContext and runs task
// with it. No live tracer or span is ever shared between units, and the
// worker's own state is untouched because each submission gets its own
// scope.
//
// When no recording tracer is installed on ec, the task runs under a fresh
// empty scope whose tracer is the no-op tracer, so spans started by the task
// stay inert, matching the caller.
func Wrap(ec ExecutionContext, task func(ec ExecutionContext)) func() {
	t, ok := ec.Tracer().(*tracer)
	if !ok {
		return func() {
			task(NewExecutionContext())
		}
	}

	wire := t.propagator.Encode(t.SpanContext())
	sampler := t.sampler
	exporter := t.exporter
	propagator := t.propagator
	clock := t.clock
	log := t.log

	return func() {
		wec := NewExecutionContext()
		opts := []Option{
			WithSampler(sampler),
			WithExporter(exporter),
			WithPropagator(propagator),
			WithClock(clock),
			WithLogger(log),
		}
		if sc, ok := propagator.Decode(wire); ok {
			opts = append(opts, WithSpanContext(sc))
		} else {
			// Fail open: the task roots a fresh trace instead of failing.
			log.Warn("hand-off context failed to decode, starting new trace")
		}
		New(wec, opts...)
		task(wec)
	}
}
