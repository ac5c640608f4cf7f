package tracekit

import (
	"context"
	"sync"
	"testing"
)

func TestEmptyExecutionContextDefaults(t *testing.T) {
	ec := NewExecutionContext()

	if _, ok := ec.Tracer().(noopTracer); !ok {
		t.Error("empty context must report the no-op tracer")
	}
	if ec.CurrentSpan() != nil {
		t.Error("empty context must have no current span")
	}
	if attrs := ec.Attrs(); len(attrs) != 0 {
		t.Errorf("empty context must have no attrs, got %v", attrs)
	}
}

func TestExecutionContextAttrs(t *testing.T) {
	ec := NewExecutionContext()

	ec.SetAttr("request.id", "abc-123")
	ec.SetAttr("retry", 2)

	if v, ok := ec.Attr("request.id"); !ok || v != "abc-123" {
		t.Errorf("expected request.id, got %v ok=%t", v, ok)
	}
	if _, ok := ec.Attr("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	ec.SetAttrs(map[string]any{"only": "this"})
	if _, ok := ec.Attr("request.id"); ok {
		t.Error("SetAttrs must replace the whole map")
	}
	if v, _ := ec.Attr("only"); v != "this" {
		t.Errorf("expected replacement attrs, got %v", v)
	}
}

func TestClearResetsEverything(t *testing.T) {
	ec := NewExecutionContext()
	tracer := New(ec)
	tracer.StartSpan("open")
	ec.SetAttr("key", "value")

	ec.Clear()

	if _, ok := ec.Tracer().(noopTracer); !ok {
		t.Error("Clear must reset the tracer to no-op")
	}
	if ec.CurrentSpan() != nil {
		t.Error("Clear must drop the current span")
	}
	if len(ec.Attrs()) != 0 {
		t.Error("Clear must empty the attrs")
	}
}

func TestSnapshotRestore(t *testing.T) {
	ec := NewExecutionContext()
	tracer := New(ec)
	span := tracer.StartSpan("captured")
	ec.SetAttr("key", "value")

	state := ec.Snapshot()

	// A second unit restores the snapshot verbatim.
	other := NewExecutionContext()
	other.Restore(state)

	if other.Tracer() != tracer {
		t.Error("restored context must report the captured tracer")
	}
	if other.CurrentSpan() != span {
		t.Error("restored context must report the captured span")
	}
	if v, _ := other.Attr("key"); v != "value" {
		t.Error("restored context must carry the captured attrs")
	}

	// The snapshot is a copy: later changes on the origin don't leak in.
	ec.SetAttr("key", "changed")
	if v, _ := other.Attr("key"); v != "value" {
		t.Error("snapshot attrs must be isolated from the origin")
	}
}

func TestExecutionUnitIsolation(t *testing.T) {
	// Two logical execution units, each with its own context, must never
	// observe each other's active span.
	var wg sync.WaitGroup
	results := make([]*Span, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			ec := NewExecutionContext()
			tracer := New(ec)
			span := tracer.StartSpan("unit")
			for j := 0; j < 100; j++ {
				if ec.CurrentSpan() != span {
					t.Error("unit observed a foreign span")
					return
				}
			}
			results[n] = span
		}(i)
	}
	wg.Wait()

	if results[0] == nil || results[1] == nil {
		t.Fatal("both units must have run")
	}
	if results[0].Context().TraceID == results[1].Context().TraceID {
		t.Error("independent units must root independent traces")
	}
}

func TestContextCarrierBackend(t *testing.T) {
	ec := NewExecutionContext()
	tracer := New(ec)
	span := tracer.StartSpan("travels")

	ctx := NewContext(context.Background(), ec)

	// The scope follows the context across a goroutine hop.
	done := make(chan struct{})
	go func(ctx context.Context) {
		defer close(done)
		got := FromContext(ctx)
		if got.CurrentSpan() != span {
			t.Error("scope must follow the context across units")
		}
		if got.Tracer() != tracer {
			t.Error("tracer must follow the context across units")
		}
	}(ctx)
	<-done
}

func TestFromContextWithoutScope(t *testing.T) {
	ec := FromContext(context.Background())
	if _, ok := ec.Tracer().(noopTracer); !ok {
		t.Error("bare context must yield an empty scope with the no-op tracer")
	}

	if FromContext(nil) == nil { //nolint:staticcheck // nil tolerance is part of the contract
		t.Error("nil context must still yield a scope")
	}
}
