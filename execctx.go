package tracekit

import (
	"context"
	"sync"
)

// ExecutionContext is the scope that makes "current tracer", "current span"
// and the auxiliary attribute map resolvable without threading them through
// every call. Each logical execution unit (a goroutine, or a task under a
// cooperative scheduler) owns exactly one ExecutionContext and is the only
// unit that mutates it; crossing a unit boundary goes through
// Snapshot/Restore or the Wrap hand-off, never by sharing the live value.
type ExecutionContext interface {
	// Tracer returns the active tracer, or the no-op tracer when none has
	// been installed.
	Tracer() Tracer
	SetTracer(t Tracer)

	// CurrentSpan returns the top of the open-span stack, or nil.
	CurrentSpan() *Span
	SetCurrentSpan(s *Span)

	// Attr reads one key from the auxiliary attribute map, cross-cutting
	// metadata not tied to a particular span.
	Attr(key string) (any, bool)
	SetAttr(key string, value any)
	Attrs() map[string]any
	SetAttrs(attrs map[string]any)

	// Clear resets tracer, current span and attributes to their defaults.
	// Called when the execution unit's work concludes.
	Clear()

	// Snapshot captures the three fields as an opaque value that can be
	// carried to another execution unit and reinstated with Restore.
	Snapshot() State
	Restore(state State)
}

// State is an opaque snapshot of an ExecutionContext.
type State struct {
	tracer Tracer
	span   *Span
	attrs  map[string]any
}

// NewExecutionContext returns the default backend: a mutable cell meant to
// be owned by a single execution unit. The lock only guards against
// accidental cross-unit reads; ownership, not locking, is the concurrency
// model.
func NewExecutionContext() ExecutionContext {
	return &executionContext{}
}

type executionContext struct {
	mu     sync.Mutex
	tracer Tracer
	span   *Span
	attrs  map[string]any
}

func (ec *executionContext) Tracer() Tracer {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.tracer == nil {
		return NoopTracer()
	}
	return ec.tracer
}

func (ec *executionContext) SetTracer(t Tracer) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.tracer = t
}

func (ec *executionContext) CurrentSpan() *Span {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.span
}

func (ec *executionContext) SetCurrentSpan(s *Span) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.span = s
}

func (ec *executionContext) Attr(key string) (any, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	value, ok := ec.attrs[key]
	return value, ok
}

func (ec *executionContext) SetAttr(key string, value any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.attrs == nil {
		ec.attrs = make(map[string]any)
	}
	ec.attrs[key] = value
}

func (ec *executionContext) Attrs() map[string]any {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return copyAttrs(ec.attrs)
}

func (ec *executionContext) SetAttrs(attrs map[string]any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.attrs = copyAttrs(attrs)
}

func (ec *executionContext) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.tracer = nil
	ec.span = nil
	ec.attrs = nil
}

func (ec *executionContext) Snapshot() State {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	return State{
		tracer: ec.tracer,
		span:   ec.span,
		attrs:  copyAttrs(ec.attrs),
	}
}

func (ec *executionContext) Restore(state State) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.tracer = state.tracer
	ec.span = state.span
	ec.attrs = copyAttrs(state.attrs)
}

func copyAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

type ecKey struct{}

// NewContext returns a context.Context carrying ec. This is the cooperative
// backend: the scope follows the logical task wherever its context flows,
// including across goroutine hops, instead of being pinned to one execution
// unit.
func NewContext(ctx context.Context, ec ExecutionContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ecKey{}, ec)
}

// FromContext returns the ExecutionContext carried by ctx. When ctx carries
// none, a fresh empty context is returned; install it with NewContext for
// changes to stick.
func FromContext(ctx context.Context) ExecutionContext {
	if ctx != nil {
		if ec, ok := ctx.Value(ecKey{}).(ExecutionContext); ok {
			return ec
		}
	}
	return NewExecutionContext()
}
