package tracekit

import "testing"

func TestAlwaysNeverSample(t *testing.T) {
	id := newTraceID()

	if !AlwaysSample().ShouldSample(id) {
		t.Error("AlwaysSample should sample every trace")
	}
	if NeverSample().ShouldSample(id) {
		t.Error("NeverSample should sample no trace")
	}
}

func TestProbabilitySamplerDeterminism(t *testing.T) {
	s := ProbabilitySampler(0.5)

	for i := 0; i < 100; i++ {
		id := newTraceID()
		first := s.ShouldSample(id)
		for j := 0; j < 10; j++ {
			if s.ShouldSample(id) != first {
				t.Fatalf("decision for %s changed between calls", id)
			}
		}
	}
}

func TestProbabilitySamplerBounds(t *testing.T) {
	id := newTraceID()

	if !ProbabilitySampler(1.0).ShouldSample(id) {
		t.Error("fraction 1.0 should sample everything")
	}
	if !ProbabilitySampler(2.5).ShouldSample(id) {
		t.Error("fraction above 1 clamps to always")
	}
	if ProbabilitySampler(0).ShouldSample(id) {
		t.Error("fraction 0 should sample nothing")
	}
	if ProbabilitySampler(-1).ShouldSample(id) {
		t.Error("negative fraction clamps to never")
	}
}

func TestProbabilitySamplerSplitsByTraceID(t *testing.T) {
	// The low half of the trace id drives the decision; ids we control land
	// deterministically on either side of a 0.5 bound.
	s := ProbabilitySampler(0.5)

	var low TraceID // low 8 bytes all zero -> hashes below any positive bound
	if !s.ShouldSample(low) {
		t.Error("all-zero low half should sample at fraction 0.5")
	}

	var high TraceID
	for i := 8; i < 16; i++ {
		high[i] = 0xff
	}
	if s.ShouldSample(high) {
		t.Error("all-ones low half should not sample at fraction 0.5")
	}
}

func TestProbabilitySamplerRoughFraction(t *testing.T) {
	s := ProbabilitySampler(0.5)

	sampled := 0
	const n = 2000
	for i := 0; i < n; i++ {
		if s.ShouldSample(newTraceID()) {
			sampled++
		}
	}
	// Loose bounds: binomial(2000, 0.5) staying within [800, 1200] is
	// overwhelmingly likely.
	if sampled < n*2/5 || sampled > n*3/5 {
		t.Errorf("sampled %d of %d traces at fraction 0.5", sampled, n)
	}
}
