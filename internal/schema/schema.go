// Package schema implements the subset of the Perfetto trace wire format
// that package pft emits: track descriptors, track events, and interned
// data, wrapped in trace packets. Messages are encoded and decoded directly
// with protowire against the field numbers of the upstream perfetto protos,
// which keeps the module free of generated code while staying byte-exact on
// the wire.
//
// Field numbers are taken from perfetto's trace_packet.proto,
// track_descriptor.proto, track_event.proto, debug_annotation.proto, and
// interned_data.proto. Unknown fields are skipped on decode.
package schema

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// TracePacket sequence_flags values.
const (
	SeqIncrementalStateCleared uint32 = 1
	SeqNeedsIncrementalState   uint32 = 2
)

// TrackEventType is track_event.TrackEvent.Type.
type TrackEventType int32

const (
	TypeUnspecified TrackEventType = 0
	TypeSliceBegin  TrackEventType = 1
	TypeSliceEnd    TrackEventType = 2
	TypeInstant     TrackEventType = 3
	TypeCounter     TrackEventType = 4
)

// CounterUnit is counter_descriptor.CounterDescriptor.Unit.
type CounterUnit int32

const (
	UnitUnspecified CounterUnit = 0
	UnitTimeNs      CounterUnit = 1
	UnitCount       CounterUnit = 2
	UnitSizeBytes   CounterUnit = 3
)

// A Trace is the top-level message of a .pftrace file: a flat sequence of
// packets.
type Trace struct {
	Packets []TracePacket
}

// A TracePacket carries at most one payload (track event or track
// descriptor), an optional timestamp, the id of the sequence that produced
// it, and optionally a batch of newly interned names and locations.
type TracePacket struct {
	HasTimestamp     bool
	Timestamp        uint64
	TimestampClockID uint32

	TrackEvent      *TrackEvent
	TrackDescriptor *TrackDescriptor

	SequenceID    uint32
	SequenceFlags uint32
	Interned      *InternedData
}

// A TrackDescriptor declares a track: its uuid, display name, and either a
// thread identity or a counter identity.
type TrackDescriptor struct {
	UUID    uint64
	Name    string
	Thread  *ThreadDescriptor
	Counter *CounterDescriptor
}

type ThreadDescriptor struct {
	PID        int32
	TID        int32
	ThreadName string
}

type CounterDescriptor struct {
	Unit           CounterUnit
	UnitName       string
	UnitMultiplier int64
	IsIncremental  bool
}

// A TrackEvent is one slice begin/end or counter value on a track.
type TrackEvent struct {
	Type              TrackEventType
	TrackUUID         uint64
	NameIID           uint64
	SourceLocationIID uint64

	HasCounterValue       bool
	CounterValue          int64
	HasDoubleCounterValue bool
	DoubleCounterValue    float64

	Annotations []DebugAnnotation
}

// ValueKind discriminates the value carried by a DebugAnnotation.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueBool
	ValueUint
	ValueInt
	ValueDouble
	ValueString
)

// A DebugAnnotation is one name/value pair attached to a slice-begin event.
// The name is an interned-data reference.
type DebugAnnotation struct {
	NameIID uint64

	Kind   ValueKind
	Bool   bool
	Uint   uint64
	Int    int64
	Double float64
	Str    string
}

// InternedData registers sequence-scoped ids for names and source locations
// referenced by later (and same-packet) track events.
type InternedData struct {
	EventNames           []EventName
	DebugAnnotationNames []DebugAnnotationName
	SourceLocations      []SourceLocation
}

type EventName struct {
	IID  uint64
	Name string
}

type DebugAnnotationName struct {
	IID  uint64
	Name string
}

type SourceLocation struct {
	IID        uint64
	FileName   string
	LineNumber uint32
}

//
//
//

// Marshal encodes the trace in the Perfetto wire format.
func (t *Trace) Marshal() []byte {
	var b []byte
	for i := range t.Packets {
		b = appendMessage(b, 1, t.Packets[i].appendTo(nil))
	}
	return b
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func (p *TracePacket) appendTo(b []byte) []byte {
	if p.HasTimestamp {
		b = appendVarintField(b, 8, p.Timestamp)
		b = appendVarintField(b, 58, uint64(p.TimestampClockID))
	}
	if p.TrackEvent != nil {
		b = appendMessage(b, 11, p.TrackEvent.appendTo(nil))
	}
	if p.TrackDescriptor != nil {
		b = appendMessage(b, 60, p.TrackDescriptor.appendTo(nil))
	}
	b = appendVarintField(b, 10, uint64(p.SequenceID))
	if p.SequenceFlags != 0 {
		b = appendVarintField(b, 13, uint64(p.SequenceFlags))
	}
	if p.Interned != nil {
		b = appendMessage(b, 12, p.Interned.appendTo(nil))
	}
	return b
}

func (d *TrackDescriptor) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, d.UUID)
	if d.Name != "" {
		b = appendStringField(b, 2, d.Name)
	}
	if d.Thread != nil {
		b = appendMessage(b, 4, d.Thread.appendTo(nil))
	}
	if d.Counter != nil {
		b = appendMessage(b, 8, d.Counter.appendTo(nil))
	}
	return b
}

func (d *ThreadDescriptor) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(int64(d.PID)))
	b = appendVarintField(b, 2, uint64(int64(d.TID)))
	if d.ThreadName != "" {
		b = appendStringField(b, 5, d.ThreadName)
	}
	return b
}

func (d *CounterDescriptor) appendTo(b []byte) []byte {
	if d.Unit != UnitUnspecified {
		b = appendVarintField(b, 3, uint64(int64(d.Unit)))
	}
	if d.UnitMultiplier != 0 {
		b = appendVarintField(b, 4, uint64(d.UnitMultiplier))
	}
	if d.IsIncremental {
		b = appendVarintField(b, 5, 1)
	}
	if d.UnitName != "" {
		b = appendStringField(b, 6, d.UnitName)
	}
	return b
}

func (e *TrackEvent) appendTo(b []byte) []byte {
	for i := range e.Annotations {
		b = appendMessage(b, 4, e.Annotations[i].appendTo(nil))
	}
	if e.Type != TypeUnspecified {
		b = appendVarintField(b, 9, uint64(int64(e.Type)))
	}
	if e.NameIID != 0 {
		b = appendVarintField(b, 10, e.NameIID)
	}
	b = appendVarintField(b, 11, e.TrackUUID)
	if e.HasCounterValue {
		b = appendVarintField(b, 30, uint64(e.CounterValue))
	}
	if e.SourceLocationIID != 0 {
		b = appendVarintField(b, 33, e.SourceLocationIID)
	}
	if e.HasDoubleCounterValue {
		b = protowire.AppendTag(b, 44, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(e.DoubleCounterValue))
	}
	return b
}

func (a *DebugAnnotation) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, a.NameIID)
	switch a.Kind {
	case ValueBool:
		var bits uint64
		if a.Bool {
			bits = 1
		}
		b = appendVarintField(b, 2, bits)
	case ValueUint:
		b = appendVarintField(b, 3, a.Uint)
	case ValueInt:
		b = appendVarintField(b, 4, uint64(a.Int))
	case ValueDouble:
		b = protowire.AppendTag(b, 5, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(a.Double))
	case ValueString:
		b = appendStringField(b, 6, a.Str)
	}
	return b
}

func (d *InternedData) appendTo(b []byte) []byte {
	for i := range d.EventNames {
		var sub []byte
		sub = appendVarintField(sub, 1, d.EventNames[i].IID)
		sub = appendStringField(sub, 2, d.EventNames[i].Name)
		b = appendMessage(b, 2, sub)
	}
	for i := range d.DebugAnnotationNames {
		var sub []byte
		sub = appendVarintField(sub, 1, d.DebugAnnotationNames[i].IID)
		sub = appendStringField(sub, 2, d.DebugAnnotationNames[i].Name)
		b = appendMessage(b, 3, sub)
	}
	for i := range d.SourceLocations {
		var sub []byte
		sub = appendVarintField(sub, 1, d.SourceLocations[i].IID)
		sub = appendStringField(sub, 2, d.SourceLocations[i].FileName)
		sub = appendVarintField(sub, 4, uint64(d.SourceLocations[i].LineNumber))
		b = appendMessage(b, 4, sub)
	}
	return b
}
