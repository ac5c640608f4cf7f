// Package tracekit provides the causal-context and span-lifecycle core of a
// distributed tracing client.
//
// tracekit tracks a tree of timed operations (spans) across synchronous
// calls and explicit hand-offs to worker pools, and pushes finished spans to
// a pluggable export sink. It deliberately stops there: adapters that
// instrument specific client libraries or frameworks live outside this
// module and only consume its public surface.
//
// Core Components:
//   - SpanContext: immutable trace id / span id / sampled triple that
//     crosses process and execution-unit boundaries.
//   - Span: one recorded operation. Mutable while open, frozen once ended.
//   - Tracer: creates and ends spans for one logical execution, applies the
//     Sampler, and forwards finished sampled spans to the Exporter.
//   - ExecutionContext: per-execution-unit scope holding the active tracer,
//     the active span and an auxiliary attribute map.
//   - Propagator: codec for SpanContext wire formats (binary and header).
//   - Sampler: policy deciding whether a locally-rooted trace is recorded.
//   - Exporter: sink for finished, sampled spans.
//
// Basic Usage:
//
//	ec := tracekit.NewExecutionContext()
//	tracer := tracekit.New(ec,
//		tracekit.WithSampler(tracekit.AlwaysSample()),
//		tracekit.WithExporter(exporter))
//
//	span := tracer.StartSpan("handle-request", tracekit.WithSpanKind(tracekit.SpanKindServer))
//	span.AddAttribute("http.method", "GET")
//	defer span.End()
//
// Or let the tracer bound the span on every exit path:
//
//	err := tracer.Do("query-users", func(span *tracekit.Span) error {
//		span.AddAttribute("db.rows", 42)
//		return nil
//	})
//
// Concurrency Model:
//
// An ExecutionContext belongs to exactly one logical execution unit. Spans
// of one unit are never mutated by another; crossing a worker-pool boundary
// goes through Wrap, which encodes the caller's SpanContext and rebuilds a
// fresh Tracer on the worker side instead of sharing live state.
//
// Failure Model:
//
// Misuse (double end, attribute writes after end, ending with an empty
// stack) is swallowed and logged, never surfaced to the instrumented
// application. Malformed propagation input fails open to a new root trace.
// Exporter failures stay inside the exporter.
package tracekit
