package schema

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Unmarshal decodes a Perfetto trace produced by Marshal (or by any writer
// limited to the messages this package models). Fields this package does not
// model are skipped.
func Unmarshal(data []byte) (*Trace, error) {
	t := &Trace{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, f field) error {
		if num == 1 && typ == protowire.BytesType {
			pkt, err := unmarshalPacket(f.bytes)
			if err != nil {
				return err
			}
			t.Packets = append(t.Packets, pkt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// field is one decoded field value. Which member is meaningful depends on
// the wire type the walker saw.
type field struct {
	varint uint64
	fixed  uint64
	bytes  []byte
}

// walkFields decodes each top-level field of a message body and hands it to
// fn, skipping nothing: unknown fields still reach fn, which is expected to
// ignore numbers it does not care about.
func walkFields(data []byte, fn func(protowire.Number, protowire.Type, field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("schema: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var f field
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(data)
		case protowire.Fixed64Type:
			f.fixed, n = protowire.ConsumeFixed64(data)
		case protowire.Fixed32Type:
			var v32 uint32
			v32, n = protowire.ConsumeFixed32(data)
			f.fixed = uint64(v32)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(data)
		default:
			return fmt.Errorf("schema: field %d: unsupported wire type %d", num, typ)
		}
		if n < 0 {
			return fmt.Errorf("schema: field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]

		if err := fn(num, typ, f); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalPacket(data []byte) (TracePacket, error) {
	var p TracePacket
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case 8:
			p.HasTimestamp = true
			p.Timestamp = f.varint
		case 58:
			p.TimestampClockID = uint32(f.varint)
		case 10:
			p.SequenceID = uint32(f.varint)
		case 13:
			p.SequenceFlags = uint32(f.varint)
		case 11:
			ev, err := unmarshalTrackEvent(f.bytes)
			if err != nil {
				return err
			}
			p.TrackEvent = ev
		case 60:
			td, err := unmarshalTrackDescriptor(f.bytes)
			if err != nil {
				return err
			}
			p.TrackDescriptor = td
		case 12:
			in, err := unmarshalInternedData(f.bytes)
			if err != nil {
				return err
			}
			p.Interned = in
		}
		return nil
	})
	return p, err
}

func unmarshalTrackDescriptor(data []byte) (*TrackDescriptor, error) {
	d := &TrackDescriptor{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case 1:
			d.UUID = f.varint
		case 2:
			d.Name = string(f.bytes)
		case 4:
			th := &ThreadDescriptor{}
			err := walkFields(f.bytes, func(num protowire.Number, typ protowire.Type, f field) error {
				switch num {
				case 1:
					th.PID = int32(int64(f.varint))
				case 2:
					th.TID = int32(int64(f.varint))
				case 5:
					th.ThreadName = string(f.bytes)
				}
				return nil
			})
			if err != nil {
				return err
			}
			d.Thread = th
		case 8:
			cd := &CounterDescriptor{}
			err := walkFields(f.bytes, func(num protowire.Number, typ protowire.Type, f field) error {
				switch num {
				case 3:
					cd.Unit = CounterUnit(int32(f.varint))
				case 4:
					cd.UnitMultiplier = int64(f.varint)
				case 5:
					cd.IsIncremental = f.varint != 0
				case 6:
					cd.UnitName = string(f.bytes)
				}
				return nil
			})
			if err != nil {
				return err
			}
			d.Counter = cd
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func unmarshalTrackEvent(data []byte) (*TrackEvent, error) {
	e := &TrackEvent{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case 4:
			ann, err := unmarshalAnnotation(f.bytes)
			if err != nil {
				return err
			}
			e.Annotations = append(e.Annotations, ann)
		case 9:
			e.Type = TrackEventType(int32(f.varint))
		case 10:
			e.NameIID = f.varint
		case 11:
			e.TrackUUID = f.varint
		case 30:
			e.HasCounterValue = true
			e.CounterValue = int64(f.varint)
		case 33:
			e.SourceLocationIID = f.varint
		case 44:
			e.HasDoubleCounterValue = true
			e.DoubleCounterValue = math.Float64frombits(f.fixed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func unmarshalAnnotation(data []byte) (DebugAnnotation, error) {
	var a DebugAnnotation
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case 1:
			a.NameIID = f.varint
		case 2:
			a.Kind = ValueBool
			a.Bool = f.varint != 0
		case 3:
			a.Kind = ValueUint
			a.Uint = f.varint
		case 4:
			a.Kind = ValueInt
			a.Int = int64(f.varint)
		case 5:
			a.Kind = ValueDouble
			a.Double = math.Float64frombits(f.fixed)
		case 6:
			a.Kind = ValueString
			a.Str = string(f.bytes)
		}
		return nil
	})
	return a, err
}

func unmarshalInternedData(data []byte) (*InternedData, error) {
	d := &InternedData{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case 2:
			iid, name, err := unmarshalIIDName(f.bytes)
			if err != nil {
				return err
			}
			d.EventNames = append(d.EventNames, EventName{IID: iid, Name: name})
		case 3:
			iid, name, err := unmarshalIIDName(f.bytes)
			if err != nil {
				return err
			}
			d.DebugAnnotationNames = append(d.DebugAnnotationNames, DebugAnnotationName{IID: iid, Name: name})
		case 4:
			loc := SourceLocation{}
			err := walkFields(f.bytes, func(num protowire.Number, typ protowire.Type, f field) error {
				switch num {
				case 1:
					loc.IID = f.varint
				case 2:
					loc.FileName = string(f.bytes)
				case 4:
					loc.LineNumber = uint32(f.varint)
				}
				return nil
			})
			if err != nil {
				return err
			}
			d.SourceLocations = append(d.SourceLocations, loc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func unmarshalIIDName(data []byte) (iid uint64, name string, err error) {
	err = walkFields(data, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case 1:
			iid = f.varint
		case 2:
			name = string(f.bytes)
		}
		return nil
	})
	return iid, name, err
}
