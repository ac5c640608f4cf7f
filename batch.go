package tracekit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/zoobzio/clockz"
)

// FlushFunc delivers a completed batch to its destination. Errors are retried
// with exponential backoff; a batch that keeps failing is dropped and
// counted, never re-surfaced to span lifecycle.
type FlushFunc func(batch []*Span) error

const (
	defaultBatchBuffer    = 1024
	defaultMaxBatch       = 100
	defaultFlushInterval  = 5 * time.Second
	defaultFlushRetries   = 2
	batchExporterShutdown = 5 * time.Second
)

// BatchOption configures a BatchExporter.
type BatchOption func(*BatchExporter)

// WithMaxBatch sets the batch size that triggers an immediate flush.
func WithMaxBatch(n int) BatchOption {
	return func(b *BatchExporter) {
		if n > 0 {
			b.maxBatch = n
		}
	}
}

// WithFlushInterval sets how often buffered spans are flushed regardless of
// batch size.
func WithFlushInterval(d time.Duration) BatchOption {
	return func(b *BatchExporter) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithFlushRetries sets how many times a failed flush is retried before the
// batch is dropped. Zero means a single attempt.
func WithFlushRetries(n uint64) BatchOption {
	return func(b *BatchExporter) { b.retries = n }
}

// WithBatchClock injects the clock driving the flush interval.
func WithBatchClock(clock clockz.Clock) BatchOption {
	return func(b *BatchExporter) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithBatchLogger sets the logger for dropped-batch warnings.
func WithBatchLogger(log hclog.Logger) BatchOption {
	return func(b *BatchExporter) {
		if log != nil {
			b.log = log
		}
	}
}

// BatchExporter is an Exporter that buffers finished spans and delivers them
// in batches through a FlushFunc. Incoming spans go through a bounded
// channel: when the exporter cannot keep up, spans are dropped and counted
// instead of blocking the tracer. The exporter serializes its own internal
// access; tracers on any execution unit may share one instance.
type BatchExporter struct {
	flush    FlushFunc
	spansCh  chan *Span
	stopCh   chan struct{}
	done     chan struct{}
	maxBatch int
	interval time.Duration
	retries  uint64
	clock    clockz.Clock
	log      hclog.Logger

	mu      sync.Mutex
	buf     []*Span
	dropped atomic.Int64
	closed  atomic.Bool
}

// NewBatchExporter creates a running batch exporter delivering through
// flush. Close it to drain and stop the background worker.
func NewBatchExporter(flush FlushFunc, opts ...BatchOption) *BatchExporter {
	b := &BatchExporter{
		flush:    flush,
		spansCh:  make(chan *Span, defaultBatchBuffer),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		maxBatch: defaultMaxBatch,
		interval: defaultFlushInterval,
		retries:  defaultFlushRetries,
		clock:    clockz.RealClock,
		log:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

// Export queues the batch's spans for delivery. Never blocks: spans that do
// not fit the buffer are dropped and counted.
func (b *BatchExporter) Export(batch []*Span) {
	if b.closed.Load() {
		b.dropped.Add(int64(len(batch)))
		return
	}
	for _, span := range batch {
		if span == nil {
			continue
		}
		select {
		case b.spansCh <- span:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *BatchExporter) run() {
	defer close(b.done)

	timer := b.clock.After(b.interval)
	for {
		select {
		case <-b.stopCh:
			// Drain whatever made it into the channel, then flush once.
			for {
				select {
				case span := <-b.spansCh:
					b.buffer(span)
				default:
					b.flushBuffered()
					return
				}
			}
		case span := <-b.spansCh:
			if b.buffer(span) >= b.maxBatch {
				b.flushBuffered()
			}
		case <-timer:
			b.flushBuffered()
			timer = b.clock.After(b.interval)
		}
	}
}

func (b *BatchExporter) buffer(span *Span) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, span)
	return len(b.buf)
}

// flushBuffered hands the current buffer to the flush func, retrying with
// exponential backoff. The buffer is detached first so a slow flush never
// blocks buffering.
func (b *BatchExporter) flushBuffered() {
	b.mu.Lock()
	batch := b.buf
	b.buf = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	attempt := func() error {
		return b.deliver(batch)
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), b.retries)
	if err := backoff.Retry(attempt, policy); err != nil {
		b.dropped.Add(int64(len(batch)))
		b.log.Warn("dropping batch after failed flush", "spans", len(batch), "error", err)
	}
}

// deliver shields the worker from a panicking flush func.
func (b *BatchExporter) deliver(batch []*Span) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("flush panicked: %v", r)
		}
	}()
	return b.flush(batch)
}

// Count returns the number of spans buffered and not yet flushed.
func (b *BatchExporter) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// DroppedCount returns how many spans were dropped, whether by backpressure
// or by a flush that kept failing.
func (b *BatchExporter) DroppedCount() int64 {
	return b.dropped.Load()
}

// Close drains queued spans, flushes them and stops the worker. Spans
// exported after Close are dropped.
func (b *BatchExporter) Close() {
	if b.closed.Swap(true) {
		return
	}
	close(b.stopCh)
	select {
	case <-b.done:
	case <-time.After(batchExporterShutdown):
		b.log.Warn("batch exporter close timed out")
	}
}
