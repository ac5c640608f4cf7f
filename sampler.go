package tracekit

import "encoding/binary"

// Sampler decides whether a locally-rooted trace is recorded. Implementations
// must be pure functions of the trace id so that every service sampling the
// same trace reaches the same decision.
type Sampler interface {
	ShouldSample(id TraceID) bool
}

// AlwaysSample returns a sampler that records every trace.
func AlwaysSample() Sampler { return alwaysSampler{} }

// NeverSample returns a sampler that records no traces.
func NeverSample() Sampler { return neverSampler{} }

type alwaysSampler struct{}

func (alwaysSampler) ShouldSample(TraceID) bool { return true }

type neverSampler struct{}

func (neverSampler) ShouldSample(TraceID) bool { return false }

// ProbabilitySampler returns a sampler that records approximately the given
// fraction of traces. The decision is a deterministic function of the trace
// id: the low 8 bytes, interpreted as a 63-bit integer, are compared against
// fraction * 2^63. Fractions outside [0, 1] are clamped.
func ProbabilitySampler(fraction float64) Sampler {
	if fraction >= 1 {
		return alwaysSampler{}
	}
	if fraction <= 0 {
		return neverSampler{}
	}
	return probabilitySampler{bound: uint64(fraction * (1 << 63))}
}

type probabilitySampler struct {
	bound uint64
}

func (s probabilitySampler) ShouldSample(id TraceID) bool {
	x := binary.BigEndian.Uint64(id[8:16]) >> 1
	return x < s.bound
}
