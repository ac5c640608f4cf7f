package tracekit

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/zoobzio/clockz"
)

// SpanKind classifies the role of the operation a span records.
type SpanKind int

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindServer
	SpanKindClient
	SpanKindInternal
)

// String returns the canonical name of the kind.
func (k SpanKind) String() string {
	switch k {
	case SpanKindServer:
		return "SERVER"
	case SpanKindClient:
		return "CLIENT"
	case SpanKindInternal:
		return "INTERNAL"
	default:
		return "UNSPECIFIED"
	}
}

// Status codes for Span.SetStatus. The zero code means OK.
const (
	StatusCodeOK      int32 = 0
	StatusCodeUnknown int32 = 2
)

// Status records the outcome of a span's operation on error paths.
type Status struct {
	Code    int32
	Message string
}

// Span is one recorded operation within a trace. A span is open from
// StartSpan until it is ended; while open its name, attributes and status
// may change, afterwards every write is dropped. All methods are nil-safe so
// spans handed out by the no-op tracer cost nothing and never panic.
type Span struct {
	mu       sync.Mutex
	ctx      SpanContext
	parentID SpanID
	name     string
	kind     SpanKind
	start    time.Time
	end      time.Time
	attrs    map[string]any
	status   *Status

	// parent is the span that was active when this one started; ending this
	// span restores it as the owning context's current span.
	parent *Span
	tr     *tracer
	log    hclog.Logger
}

// Context returns the span's identity triple.
func (s *Span) Context() SpanContext {
	if s == nil {
		return SpanContext{}
	}
	return s.ctx
}

// ParentSpanID returns the span id of the parent, or zero for a root span.
func (s *Span) ParentSpanID() SpanID {
	if s == nil {
		return 0
	}
	return s.parentID
}

// Kind returns the span's kind.
func (s *Span) Kind() SpanKind {
	if s == nil {
		return SpanKindUnspecified
	}
	return s.kind
}

// Name returns the operation label.
func (s *Span) Name() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName replaces the operation label, for operations whose final name is
// only known late. Dropped once the span has ended.
func (s *Span) SetName(name string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.end.IsZero() {
		s.warn("dropping name change on ended span", "name", name)
		return
	}
	s.name = name
}

// StartTime returns when the span was opened.
func (s *Span) StartTime() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.start
}

// EndTime returns when the span was ended, zero while still open.
func (s *Span) EndTime() time.Time {
	if s == nil {
		return time.Time{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.end
}

// Duration returns the elapsed time of an ended span, zero while open.
func (s *Span) Duration() time.Duration {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}

// IsFinished reports whether the span has been ended.
func (s *Span) IsFinished() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.end.IsZero()
}

// AddAttribute records a scalar attribute on the span. Keys are
// case-sensitive and last write wins. Values must be string, bool, int,
// int64 or float64; anything else is dropped with a warning, as are writes
// after the span has ended.
func (s *Span) AddAttribute(key string, value any) {
	if s == nil {
		return
	}
	switch value.(type) {
	case string, bool, int, int64, float64:
	default:
		s.warn("dropping attribute with non-scalar value", "key", key)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.end.IsZero() {
		s.warn("dropping attribute write on ended span", "key", key)
		return
	}
	if s.attrs == nil {
		s.attrs = make(map[string]any)
	}
	s.attrs[key] = value
}

// Attribute returns the value recorded for key.
func (s *Span) Attribute(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.attrs[key]
	return value, ok
}

// Attributes returns a copy of the span's attribute map.
func (s *Span) Attributes() map[string]any {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attrs == nil {
		return nil
	}
	out := make(map[string]any, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}

// SetStatus records the outcome of the operation. Dropped after end.
func (s *Span) SetStatus(status Status) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.end.IsZero() {
		s.warn("dropping status write on ended span")
		return
	}
	s.status = &Status{Code: status.Code, Message: status.Message}
}

// Status returns the recorded status, or nil when none was set.
func (s *Span) Status() *Status {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == nil {
		return nil
	}
	st := *s.status
	return &st
}

// End ends the span through its owning tracer: the previously active span
// becomes current again and, if the trace is sampled, the span is handed to
// the exporter. Ending twice is a logged no-op.
func (s *Span) End() {
	if s == nil || s.tr == nil {
		return
	}
	s.tr.endSpan(s)
}

// finish stamps the end time exactly once. Reports whether this call did
// the transition.
func (s *Span) finish(clock clockz.Clock) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.end.IsZero() {
		return false
	}
	s.end = clock.Now()
	return true
}

func (s *Span) warn(msg string, args ...any) {
	if s.log == nil {
		return
	}
	args = append(args, "trace_id", s.ctx.TraceID.String(), "span_id", s.ctx.SpanID.String())
	s.log.Warn(msg, args...)
}
