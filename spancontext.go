package tracekit

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// TraceID identifies one logical trace. It is constant for every span that
// belongs to the trace.
type TraceID [16]byte

// IsValid reports whether the trace id is non-zero.
func (t TraceID) IsValid() bool {
	return t != TraceID{}
}

// String returns the lowercase hex form of the trace id.
func (t TraceID) String() string {
	return hex.EncodeToString(t[:])
}

// SpanID identifies one span within a trace. The zero value is reserved for
// "no span" and never assigned to a real span.
type SpanID uint64

// IsValid reports whether the span id is non-zero.
func (s SpanID) IsValid() bool {
	return s != 0
}

// String returns the decimal form of the span id, matching the header wire
// format.
func (s SpanID) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// SpanContext is the identity of a span as it crosses process and
// execution-unit boundaries: trace id, span id and the sampling decision.
// It is an immutable value type and safe to copy.
type SpanContext struct {
	TraceID TraceID
	SpanID  SpanID
	Sampled bool
}

// IsValid reports whether the context carries a usable identity. A valid
// context has a non-zero trace id and a non-zero span id.
func (sc SpanContext) IsValid() bool {
	return sc.TraceID.IsValid() && sc.SpanID.IsValid()
}

// String renders the context for logs.
func (sc SpanContext) String() string {
	return fmt.Sprintf("trace=%s span=%s sampled=%t", sc.TraceID, sc.SpanID, sc.Sampled)
}
