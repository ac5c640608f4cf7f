package tracekit

import (
	"crypto/rand"
	"encoding/binary"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// idPool keeps a buffer of pre-generated ids to amortize the cost of
// crypto-quality randomness on the span hot path.
type idPool[T any] struct {
	factory func() T
	ids     chan T
	stopCh  chan struct{}
	mu      sync.Mutex
	closed  bool
}

func newIDPool[T any](capacity int, factory func() T) *idPool[T] {
	p := &idPool[T]{
		ids:     make(chan T, capacity),
		factory: factory,
		stopCh:  make(chan struct{}),
	}
	go p.refill()
	return p
}

// get returns a pooled id, generating directly when the pool is drained by a
// burst.
func (p *idPool[T]) get() T {
	select {
	case id := <-p.ids:
		return id
	default:
		return p.factory()
	}
}

func (p *idPool[T]) refill() {
	for {
		select {
		case <-p.stopCh:
			return
		case p.ids <- p.factory():
		}
	}
}

func (p *idPool[T]) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		close(p.stopCh)
		p.closed = true
	}
}

// Shared id source for all tracers in the process. Tracers come and go per
// request, so the pools live at package scope rather than per tracer.
var idSource struct {
	once  sync.Once
	trace *idPool[TraceID]
	span  *idPool[SpanID]
}

func idPools() (*idPool[TraceID], *idPool[SpanID]) {
	idSource.once.Do(func() {
		capacity := runtime.NumCPU() * 100
		idSource.trace = newIDPool(capacity, newTraceID)
		idSource.span = newIDPool(capacity, newSpanID)
	})
	return idSource.trace, idSource.span
}

// newTraceID generates a random 128-bit trace id.
func newTraceID() TraceID {
	return TraceID(uuid.New())
}

// newSpanID generates a random non-zero 64-bit span id. Zero is reserved for
// "no span", so the rare all-zero draw is redrawn.
func newSpanID() SpanID {
	var b [8]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			// Degraded randomness beats a broken application.
			return SpanID(time.Now().UnixNano() | 1)
		}
		if id := SpanID(binary.BigEndian.Uint64(b[:])); id.IsValid() {
			return id
		}
	}
}
