package tracekit

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
)

// Propagator converts a SpanContext to and from a wire representation so it
// can cross process and execution-unit boundaries. Decode reports ok=false
// for any malformed input and never panics; callers fall back to rooting a
// fresh trace, so a corrupt incoming context degrades to "new trace" rather
// than a failed request.
type Propagator interface {
	Encode(sc SpanContext) []byte
	Decode(data []byte) (SpanContext, bool)
}

const (
	binaryVersion = 0
	binaryLen     = 26

	sampledMask byte = 1
)

// BinaryFormat is the fixed-layout binary propagator: 1 version byte,
// 16 trace id bytes, 8 big-endian span id bytes, 1 options byte whose low
// bit is the sampling flag. 26 bytes total.
type BinaryFormat struct{}

// Encode renders sc into the 26-byte layout.
func (BinaryFormat) Encode(sc SpanContext) []byte {
	b := make([]byte, binaryLen)
	b[0] = binaryVersion
	copy(b[1:17], sc.TraceID[:])
	binary.BigEndian.PutUint64(b[17:25], uint64(sc.SpanID))
	if sc.Sampled {
		b[25] |= sampledMask
	}
	return b
}

// Decode parses the 26-byte layout. Buffers of the wrong length, an unknown
// version or a reserved zero span id report ok=false.
func (BinaryFormat) Decode(data []byte) (SpanContext, bool) {
	if len(data) != binaryLen || data[0] != binaryVersion {
		return SpanContext{}, false
	}

	var sc SpanContext
	copy(sc.TraceID[:], data[1:17])
	sc.SpanID = SpanID(binary.BigEndian.Uint64(data[17:25]))
	sc.Sampled = data[25]&sampledMask != 0

	if !sc.IsValid() {
		return SpanContext{}, false
	}
	return sc, true
}

// headerRe matches "{32 hex trace id}/{decimal span id}" with an optional
// ";o={options}" suffix.
var headerRe = regexp.MustCompile(`^([0-9a-fA-F]{32})/(\d+)(?:;o=(\d+))?$`)

// HeaderFormat is the single-line text propagator used in HTTP headers:
// "{trace_id_hex}/{span_id_decimal};o={options}". Peer services speaking the
// same header stay correlated across process boundaries.
type HeaderFormat struct{}

// Encode renders sc as header bytes.
func (f HeaderFormat) Encode(sc SpanContext) []byte {
	return []byte(f.ToHeader(sc))
}

// Decode parses header bytes.
func (f HeaderFormat) Decode(data []byte) (SpanContext, bool) {
	return f.FromHeader(string(data))
}

// ToHeader renders sc as a header value string.
func (HeaderFormat) ToHeader(sc SpanContext) string {
	var options int
	if sc.Sampled {
		options = 1
	}
	return fmt.Sprintf("%s/%d;o=%d", sc.TraceID, uint64(sc.SpanID), options)
}

// FromHeader parses a header value. A missing options suffix means
// unsampled; malformed input, an overflowing span id or a reserved zero
// span id report ok=false.
func (HeaderFormat) FromHeader(header string) (SpanContext, bool) {
	m := headerRe.FindStringSubmatch(header)
	if m == nil {
		return SpanContext{}, false
	}

	var sc SpanContext
	traceID, err := hex.DecodeString(m[1])
	if err != nil {
		return SpanContext{}, false
	}
	copy(sc.TraceID[:], traceID)

	spanID, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return SpanContext{}, false
	}
	sc.SpanID = SpanID(spanID)

	if m[3] != "" {
		options, err := strconv.ParseUint(m[3], 10, 32)
		if err != nil {
			return SpanContext{}, false
		}
		sc.Sampled = options&1 != 0
	}

	if !sc.IsValid() {
		return SpanContext{}, false
	}
	return sc, true
}
