package pft

import "github.com/pftrace/pft/internal/schema"

// A CounterUnit describes the unit of the values on a counter track. Use one
// of the package-level units, or [UnitCustom] for anything else.
type CounterUnit struct {
	unit schema.CounterUnit
	name string
}

var (
	// UnitUnspecified leaves the unit out of the track descriptor.
	UnitUnspecified = CounterUnit{unit: schema.UnitUnspecified}

	// UnitTimeNanos is time in nanoseconds.
	UnitTimeNanos = CounterUnit{unit: schema.UnitTimeNs}

	// UnitCount is a generic count.
	UnitCount = CounterUnit{unit: schema.UnitCount}

	// UnitSizeBytes is a size in bytes.
	UnitSizeBytes = CounterUnit{unit: schema.UnitSizeBytes}
)

// UnitCustom is a named unit the format has no builtin for, e.g. "%" or
// "fps".
func UnitCustom(name string) CounterUnit {
	return CounterUnit{name: name}
}

// A CounterTrack is a handle to an independent numeric time series created
// by [TraceBuilder.CreateCounterTrack]. The zero value is not a valid track.
// Handles are plain values: copy them freely, but only record against them
// through the builder that created them, and for only as long as that
// builder lives.
type CounterTrack struct {
	uuid uint64
}

// CreateCounterTrack declares a new counter track and returns its handle.
// The descriptor packet is emitted immediately.
//
// unitMultiplier scales recorded values for display (e.g. 1024*1024 to show
// bytes as MiB), and incremental declares whether subsequent values are
// deltas against the previous sample rather than absolutes.
//
// Counter tracks are independent of worker logs: values are recorded
// directly on the builder, under the same single-owner contract as
// [TraceBuilder.ProcessThreadData].
func (b *TraceBuilder) CreateCounterTrack(name string, unit CounterUnit, unitMultiplier int64, incremental bool) CounterTrack {
	uuid := newTrackUUID()

	b.addPacket(schema.TracePacket{
		TrackDescriptor: &schema.TrackDescriptor{
			UUID: uuid,
			Name: name,
			Counter: &schema.CounterDescriptor{
				Unit:           unit.unit,
				UnitName:       unit.name,
				UnitMultiplier: unitMultiplier,
				IsIncremental:  incremental,
			},
		},
	})

	return CounterTrack{uuid: uuid}
}

// RecordCounterInt64 records an integer value on the track at the given
// timestamp, sampled by the caller with [Now].
func (b *TraceBuilder) RecordCounterInt64(track CounterTrack, ts Instant, value int64) {
	b.addPacket(schema.TracePacket{
		HasTimestamp:     true,
		Timestamp:        b.anchor.unixNanos(ts),
		TimestampClockID: clockID,
		TrackEvent: &schema.TrackEvent{
			Type:            schema.TypeCounter,
			TrackUUID:       track.uuid,
			HasCounterValue: true,
			CounterValue:    value,
		},
	})
}

// RecordCounterFloat64 records a floating-point value on the track at the
// given timestamp, sampled by the caller with [Now].
func (b *TraceBuilder) RecordCounterFloat64(track CounterTrack, ts Instant, value float64) {
	b.addPacket(schema.TracePacket{
		HasTimestamp:     true,
		Timestamp:        b.anchor.unixNanos(ts),
		TimestampClockID: clockID,
		TrackEvent: &schema.TrackEvent{
			Type:                  schema.TypeCounter,
			TrackUUID:             track.uuid,
			HasDoubleCounterValue: true,
			DoubleCounterValue:    value,
		},
	})
}
