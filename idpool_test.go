package tracekit

import (
	"sync"
	"testing"
)

func TestIDPoolGet(t *testing.T) {
	n := 0
	pool := newIDPool(4, func() int {
		n++
		return n
	})
	defer pool.close()

	seen := make(map[int]bool)
	for i := 0; i < 20; i++ {
		id := pool.get()
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestIDPoolConcurrentGet(t *testing.T) {
	pool := newIDPool(8, newSpanID)
	defer pool.close()

	var mu sync.Mutex
	seen := make(map[SpanID]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := pool.get()
				mu.Lock()
				if seen[id] {
					t.Error("duplicate span id from pool")
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestIDPoolCloseIdempotent(t *testing.T) {
	pool := newIDPool(2, newSpanID)
	pool.close()
	pool.close() // must not panic
}

func TestGeneratedIDsValid(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if !newSpanID().IsValid() {
			t.Fatal("span ids must never be zero")
		}
		if !newTraceID().IsValid() {
			t.Fatal("trace ids must never be zero")
		}
	}
}

func TestSharedPoolsInitializeOnce(t *testing.T) {
	tp1, sp1 := idPools()
	tp2, sp2 := idPools()
	if tp1 != tp2 || sp1 != sp2 {
		t.Error("package pools must be shared")
	}
	if !tp1.get().IsValid() || !sp1.get().IsValid() {
		t.Error("pooled ids must be valid")
	}
}
