package tracekit

import (
	"github.com/hashicorp/go-hclog"
	"github.com/zoobzio/clockz"
)

// Tracer orchestrates span creation and completion for one logical
// execution. Implementations must never panic into instrumented code; the
// no-op tracer returned by an empty ExecutionContext makes every operation
// inert.
type Tracer interface {
	// StartSpan opens a span parented to the execution context's current
	// span and makes the new span current.
	StartSpan(name string, opts ...StartOption) *Span

	// EndSpan ends the current span, restoring its parent as current. A
	// logged no-op when no span is open.
	EndSpan()

	// CurrentSpan returns the current open span, or nil.
	CurrentSpan() *Span

	// AddAttribute records an attribute on the current open span. A logged
	// no-op when no span is open.
	AddAttribute(key string, value any)

	// SpanContext returns the context of the current span, falling back to
	// the propagated context the tracer was rooted on.
	SpanContext() SpanContext

	// Do runs fn inside a span named name, ending the span on every exit
	// path. A non-nil error from fn is recorded as the span's status and
	// returned unchanged.
	Do(name string, fn func(*Span) error, opts ...StartOption) error

	// Finish ends every span still open on this tracer's context, deepest
	// first. Used when an execution unit's work concludes.
	Finish()
}

// Option configures a Tracer at construction.
type Option func(*tracer)

// WithSampler sets the sampling policy for locally-rooted traces.
func WithSampler(s Sampler) Option {
	return func(t *tracer) {
		if s != nil {
			t.sampler = s
		}
	}
}

// WithExporter sets the sink receiving finished, sampled spans.
func WithExporter(e Exporter) Option {
	return func(t *tracer) {
		if e != nil {
			t.exporter = e
		}
	}
}

// WithPropagator sets the codec used when this tracer's context is handed
// across an execution-unit boundary.
func WithPropagator(p Propagator) Option {
	return func(t *tracer) {
		if p != nil {
			t.propagator = p
		}
	}
}

// WithSpanContext roots the tracer on a propagated SpanContext. Spans
// started with no active parent inherit its trace id, span id and sampling
// bit instead of starting a fresh trace.
func WithSpanContext(sc SpanContext) Option {
	return func(t *tracer) { t.root = sc }
}

// WithClock injects the clock used for span timestamps.
func WithClock(clock clockz.Clock) Option {
	return func(t *tracer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithLogger sets the logger for misuse and propagation warnings. Silent by
// default so tracing never adds noise to the host application.
func WithLogger(log hclog.Logger) Option {
	return func(t *tracer) {
		if log != nil {
			t.log = log
		}
	}
}

// StartOption configures an individual span at start.
type StartOption func(*startOptions)

type startOptions struct {
	kind SpanKind
}

// WithSpanKind sets the span's kind. Spans default to INTERNAL.
func WithSpanKind(kind SpanKind) StartOption {
	return func(o *startOptions) { o.kind = kind }
}

// tracer is the recording Tracer. It is bound to exactly one
// ExecutionContext and must only be driven by the execution unit that owns
// that context; Sampler, Exporter and Propagator are shared read-only.
type tracer struct {
	ec         ExecutionContext
	sampler    Sampler
	exporter   Exporter
	propagator Propagator
	clock      clockz.Clock
	log        hclog.Logger

	// root is the propagated parent context, zero when locally rooted.
	root SpanContext
}

// New creates a Tracer bound to ec and installs it as the context's active
// tracer. With no options the tracer samples everything, discards exported
// spans, uses the binary propagator and stays silent.
func New(ec ExecutionContext, opts ...Option) Tracer {
	t := &tracer{
		ec:         ec,
		sampler:    AlwaysSample(),
		exporter:   discardExporter{},
		propagator: BinaryFormat{},
		clock:      clockz.RealClock,
		log:        hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	ec.SetTracer(t)
	return t
}

func (t *tracer) StartSpan(name string, opts ...StartOption) *Span {
	var o startOptions
	o.kind = SpanKindInternal
	for _, opt := range opts {
		opt(&o)
	}

	parent := t.ec.CurrentSpan()
	tracePool, spanPool := idPools()

	var sc SpanContext
	var parentID SpanID
	switch {
	case parent != nil:
		sc = SpanContext{
			TraceID: parent.ctx.TraceID,
			SpanID:  spanPool.get(),
			Sampled: parent.ctx.Sampled,
		}
		parentID = parent.ctx.SpanID
	case t.root.IsValid():
		sc = SpanContext{
			TraceID: t.root.TraceID,
			SpanID:  spanPool.get(),
			Sampled: t.root.Sampled,
		}
		parentID = t.root.SpanID
	default:
		// First span of a fresh trace. The sampler is consulted here and
		// only here; descendants inherit the bit unchanged.
		traceID := tracePool.get()
		sc = SpanContext{
			TraceID: traceID,
			SpanID:  spanPool.get(),
			Sampled: t.sampler.ShouldSample(traceID),
		}
	}

	span := &Span{
		ctx:      sc,
		parentID: parentID,
		parent:   parent,
		name:     name,
		kind:     o.kind,
		start:    t.clock.Now(),
		tr:       t,
		log:      t.log,
	}
	t.ec.SetCurrentSpan(span)
	return span
}

func (t *tracer) EndSpan() {
	cur := t.ec.CurrentSpan()
	if cur == nil {
		t.log.Warn("end span requested with no span open")
		return
	}
	t.endSpan(cur)
}

// endSpan finalizes s, restores the context's current-span pointer when s is
// on top, and forwards sampled spans to the exporter. Spans ended out of
// order (a parent before its still-running child) leave the current pointer
// alone so the child's linkage stays intact.
func (t *tracer) endSpan(s *Span) {
	if s == nil {
		return
	}
	if !s.finish(t.clock) {
		t.log.Warn("span already ended",
			"trace_id", s.ctx.TraceID.String(), "span_id", s.ctx.SpanID.String())
		return
	}
	if t.ec.CurrentSpan() == s {
		t.ec.SetCurrentSpan(s.parent)
	}
	if s.ctx.Sampled {
		t.export(s)
	}
}

// export shields span lifecycle from a misbehaving exporter.
func (t *tracer) export(s *Span) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("exporter panicked", "recover", r)
		}
	}()
	t.exporter.Export([]*Span{s})
}

func (t *tracer) CurrentSpan() *Span {
	return t.ec.CurrentSpan()
}

func (t *tracer) AddAttribute(key string, value any) {
	cur := t.ec.CurrentSpan()
	if cur == nil {
		t.log.Warn("dropping attribute with no span open", "key", key)
		return
	}
	cur.AddAttribute(key, value)
}

func (t *tracer) SpanContext() SpanContext {
	if cur := t.ec.CurrentSpan(); cur != nil {
		return cur.ctx
	}
	return t.root
}

func (t *tracer) Do(name string, fn func(*Span) error, opts ...StartOption) error {
	span := t.StartSpan(name, opts...)
	defer t.endSpan(span)

	err := fn(span)
	if err != nil {
		span.SetStatus(Status{Code: StatusCodeUnknown, Message: err.Error()})
	}
	return err
}

func (t *tracer) Finish() {
	for cur := t.ec.CurrentSpan(); cur != nil; cur = t.ec.CurrentSpan() {
		t.endSpan(cur)
		if t.ec.CurrentSpan() == cur {
			// An already-ended span left on the stack by out-of-order ends;
			// unwind past it.
			t.ec.SetCurrentSpan(cur.parent)
		}
	}
}
