package pft

import "math"

// The number of events consumed by each span, counting both markers and both
// timestamps. Useful, together with [EventsPerArg], for sizing a
// [Log.Reserve] call.
const EventsPerSpan = 4

// The number of events consumed by each scalar argument. A [Bytes] argument
// additionally consumes one event per full 15-byte window of its payload.
const EventsPerArg = 1

// textChunkLen is the payload capacity of a single text chunk event.
const textChunkLen = 15

type eventKind uint8

const (
	evInvalid eventKind = iota

	// Span markers. Carry the site, and must be followed by a timestamp.
	evStartSpan
	evEndSpan

	// The time at which the preceding start/end marker occurred.
	evTimestamp

	// Scalar argument values, carried in the num field.
	evBool
	evUint64
	evInt64
	evFloat64

	// An argument string retained whole, carried in the str field.
	evOwnedText

	// One 15-byte window of a chunk-encoded argument. Must be followed by
	// another chunk or a chunk end.
	evTextChunk

	// The final 0..15 byte window of a chunk-encoded argument, with its true
	// length in the num field.
	evTextChunkEnd
)

func (k eventKind) String() string {
	switch k {
	case evStartSpan:
		return "StartSpan"
	case evEndSpan:
		return "EndSpan"
	case evTimestamp:
		return "Timestamp"
	case evBool:
		return "Bool"
	case evUint64:
		return "Uint64"
	case evInt64:
		return "Int64"
	case evFloat64:
		return "Float64"
	case evOwnedText:
		return "OwnedText"
	case evTextChunk:
		return "TextChunk"
	case evTextChunkEnd:
		return "TextChunkEnd"
	default:
		return "Invalid"
	}
}

// event is the fixed-shape record appended to a Log. Which fields are
// meaningful depends on the kind; the struct never grows with its payload,
// which keeps appends cheap and cache-friendly.
type event struct {
	kind  eventKind
	site  *SourceInfo       // evStartSpan, evEndSpan
	num   uint64            // scalar bits, timestamp, or chunk-end length
	str   string            // evOwnedText
	chunk [textChunkLen]byte // evTextChunk, evTextChunkEnd
}

type unsignedInteger interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type signedInteger interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// An Arg is a span argument value, created by one of the typed constructors
// ([Bool], [Uint], [Int], [Float64], [String], [Bytes]) and passed to
// [Log.StartSpan] in the order the site's SourceInfo declares its names.
type Arg struct {
	kind eventKind
	num  uint64
	str  string
	data []byte
}

// Bool records a boolean argument.
func Bool(v bool) Arg {
	var bits uint64
	if v {
		bits = 1
	}
	return Arg{kind: evBool, num: bits}
}

// Uint records an unsigned integer argument. All unsigned widths, including
// uintptr, widen to a single 64-bit event.
func Uint[T unsignedInteger](v T) Arg {
	return Arg{kind: evUint64, num: uint64(v)}
}

// Int records a signed integer argument. All signed widths widen to a single
// 64-bit event.
func Int[T signedInteger](v T) Arg {
	return Arg{kind: evInt64, num: uint64(int64(v))}
}

// Float64 records a double-precision float argument.
func Float64(v float64) Arg {
	return Arg{kind: evFloat64, num: math.Float64bits(v)}
}

// String records a text argument. Go strings are immutable, so the value is
// retained as-is in a single event; nothing is copied or allocated.
func String(v string) Arg {
	return Arg{kind: evOwnedText, str: v}
}

// Bytes records a text argument from caller-owned mutable memory. The bytes
// are copied into the log at record time, split across consecutive 15-byte
// chunk events, so the caller is free to reuse the slice immediately. The
// payload is reassembled and treated as text when the trace is built.
func Bytes(v []byte) Arg {
	return Arg{kind: evTextChunk, data: v}
}

func (a Arg) record(l *Log) {
	switch a.kind {
	case evBool, evUint64, evInt64, evFloat64:
		l.push(event{kind: a.kind, num: a.num})
	case evOwnedText:
		l.push(event{kind: evOwnedText, str: a.str})
	case evTextChunk:
		l.pushChunked(a.data)
	}
}
