package pft

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pftrace/pft/internal/schema"
)

func TestChunkRoundTrip(t *testing.T) {
	// Every length up to 100 covers the 0, 14, 15, and 16 byte boundaries of
	// the 15-byte chunk windows several times over.
	for length := 0; length <= 100; length++ {
		payload := make([]byte, length)
		for i := range payload {
			payload[i] = byte('A' + i%58)
		}

		log := NewLog()
		Bytes(payload).record(log)

		ann, next := decodeNextArg(log.events, 0)
		if want, have := len(log.events), next; want != have {
			t.Fatalf("length %d: consumed %d of %d events", length, have, want)
		}
		if want, have := schema.ValueString, ann.Kind; want != have {
			t.Fatalf("length %d: kind: want %v, have %v", length, have, want)
		}
		if !bytes.Equal(payload, []byte(ann.Str)) {
			t.Errorf("length %d: payload corrupted: %q -> %q", length, payload, ann.Str)
		}
	}
}

func TestChunkEventCounts(t *testing.T) {
	// A text argument of n bytes consumes one chunk event per full 15-byte
	// window plus the single terminating event.
	for _, tc := range []struct {
		length int
		events int
	}{
		{0, 1},
		{1, 1},
		{14, 1},
		{15, 1},
		{16, 2},
		{30, 2},
		{31, 3},
	} {
		log := NewLog()
		Bytes(make([]byte, tc.length)).record(log)
		if want, have := tc.events, log.Len(); want != have {
			t.Errorf("length %d: want %d events, have %d", tc.length, want, have)
		}
		last := log.events[log.Len()-1]
		if want, have := evTextChunkEnd, last.kind; want != have {
			t.Errorf("length %d: final event: want %v, have %v", tc.length, want, have)
		}
		for _, ev := range log.events[:log.Len()-1] {
			if want, have := evTextChunk, ev.kind; want != have {
				t.Errorf("length %d: leading event: want %v, have %v", tc.length, want, have)
			}
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		arg  Arg
		want schema.DebugAnnotation
	}{
		{"bool false", Bool(false), schema.DebugAnnotation{Kind: schema.ValueBool, Bool: false}},
		{"bool true", Bool(true), schema.DebugAnnotation{Kind: schema.ValueBool, Bool: true}},
		{"uint8", Uint(uint8(0xff)), schema.DebugAnnotation{Kind: schema.ValueUint, Uint: 0xff}},
		{"uint16", Uint(uint16(0xffff)), schema.DebugAnnotation{Kind: schema.ValueUint, Uint: 0xffff}},
		{"uint32", Uint(uint32(0xffffffff)), schema.DebugAnnotation{Kind: schema.ValueUint, Uint: 0xffffffff}},
		{"uint64", Uint(uint64(math.MaxUint64)), schema.DebugAnnotation{Kind: schema.ValueUint, Uint: math.MaxUint64}},
		{"uint", Uint(uint(1)), schema.DebugAnnotation{Kind: schema.ValueUint, Uint: 1}},
		{"uintptr", Uint(uintptr(0xdeadbeef)), schema.DebugAnnotation{Kind: schema.ValueUint, Uint: 0xdeadbeef}},
		{"int8", Int(int8(-128)), schema.DebugAnnotation{Kind: schema.ValueInt, Int: -128}},
		{"int16", Int(int16(-32768)), schema.DebugAnnotation{Kind: schema.ValueInt, Int: -32768}},
		{"int32", Int(int32(-1)), schema.DebugAnnotation{Kind: schema.ValueInt, Int: -1}},
		{"int64", Int(int64(math.MinInt64)), schema.DebugAnnotation{Kind: schema.ValueInt, Int: math.MinInt64}},
		{"int", Int(42), schema.DebugAnnotation{Kind: schema.ValueInt, Int: 42}},
		{"float64", Float64(3.25), schema.DebugAnnotation{Kind: schema.ValueDouble, Double: 3.25}},
		{"float64 neg", Float64(-0.5), schema.DebugAnnotation{Kind: schema.ValueDouble, Double: -0.5}},
		{"string", String("hello, world"), schema.DebugAnnotation{Kind: schema.ValueString, Str: "hello, world"}},
		{"string empty", String(""), schema.DebugAnnotation{Kind: schema.ValueString, Str: ""}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			log := NewLog()
			tc.arg.record(log)

			if want, have := 1, log.Len(); want != have {
				t.Fatalf("want %d event, have %d", want, have)
			}

			ann, next := decodeNextArg(log.events, 0)
			if want, have := 1, next; want != have {
				t.Fatalf("consumed %d events, want %d", have, want)
			}
			if diff := cmp.Diff(tc.want, ann); diff != "" {
				t.Errorf("decoded value (-want +have):\n%s", diff)
			}
		})
	}
}

func TestDecodeArgPanics(t *testing.T) {
	t.Run("out of events", func(t *testing.T) {
		expectPanic(t, func() { decodeNextArg(nil, 0) })
	})

	t.Run("marker as argument", func(t *testing.T) {
		site := NewSourceInfo("x")
		expectPanic(t, func() {
			decodeNextArg([]event{{kind: evStartSpan, site: site}}, 0)
		})
	})

	t.Run("unterminated chunk run", func(t *testing.T) {
		expectPanic(t, func() {
			decodeNextArg([]event{{kind: evTextChunk}}, 0)
		})
	})

	t.Run("scalar inside chunk run", func(t *testing.T) {
		expectPanic(t, func() {
			decodeNextArg([]event{{kind: evTextChunk}, {kind: evBool}}, 0)
		})
	})
}
