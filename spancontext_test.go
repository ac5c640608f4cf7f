package tracekit

import "testing"

func TestSpanContextValidity(t *testing.T) {
	if (SpanContext{}).IsValid() {
		t.Error("zero context must be invalid")
	}
	if (SpanContext{TraceID: TraceID{0x01}}).IsValid() {
		t.Error("zero span id must be invalid")
	}
	if (SpanContext{SpanID: 1}).IsValid() {
		t.Error("zero trace id must be invalid")
	}
	if !(SpanContext{TraceID: TraceID{0x01}, SpanID: 1}).IsValid() {
		t.Error("nonzero ids must be valid")
	}
}

func TestTraceIDString(t *testing.T) {
	id := TraceID{15: 0x0f}
	if got := id.String(); got != "0000000000000000000000000000000f" {
		t.Errorf("unexpected hex form %q", got)
	}
}

func TestSpanIDString(t *testing.T) {
	if got := SpanID(42).String(); got != "42" {
		t.Errorf("span ids render in decimal, got %q", got)
	}
}
