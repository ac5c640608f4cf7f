package tracekit

import "sync"

// Exporter receives batches of finished, sampled spans. The tracer calls
// Export once per finished span; wrap an exporter in a BatchExporter to get
// real batching. Implementations own their failures: nothing an exporter
// does may propagate back into span lifecycle, and the received spans are
// read-only.
type Exporter interface {
	Export(batch []*Span)
}

// discardExporter is the default sink when none is configured.
type discardExporter struct{}

func (discardExporter) Export([]*Span) {}

// CapturingExporter records every batch it receives, preserving call
// boundaries. Intended for tests and examples.
type CapturingExporter struct {
	mu      sync.Mutex
	batches [][]*Span
}

// NewCapturingExporter creates an empty capturing exporter.
func NewCapturingExporter() *CapturingExporter {
	return &CapturingExporter{}
}

// Export records the batch.
func (c *CapturingExporter) Export(batch []*Span) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make([]*Span, len(batch))
	copy(copied, batch)
	c.batches = append(c.batches, copied)
}

// Batches returns the recorded batches in arrival order.
func (c *CapturingExporter) Batches() [][]*Span {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]*Span, len(c.batches))
	copy(out, c.batches)
	return out
}

// Spans returns every recorded span flattened in arrival order.
func (c *CapturingExporter) Spans() []*Span {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*Span
	for _, batch := range c.batches {
		out = append(out, batch...)
	}
	return out
}

// Reset drops everything recorded so far.
func (c *CapturingExporter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = nil
}
