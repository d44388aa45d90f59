package pft

import (
	"testing"

	"github.com/pftrace/pft/internal/schema"
)

func TestCounterIndependence(t *testing.T) {
	setEnabled(t, true)

	builder, err := NewTraceBuilder()
	if err != nil {
		t.Fatal(err)
	}

	track := builder.CreateCounterTrack("Events", UnitCount, 1, true)
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			builder.RecordCounterInt64(track, Now(), int64(i))
		} else {
			builder.RecordCounterFloat64(track, Now(), float64(i)/2)
		}
	}

	trace, err := schema.Unmarshal(builder.Encode())
	if err != nil {
		t.Fatal(err)
	}

	var (
		descriptors int
		values      int
		trackUUID   uint64
	)
	for _, p := range trace.Packets {
		if p.Interned != nil {
			t.Errorf("counter path generated interning entries")
		}
		if p.TrackDescriptor != nil {
			descriptors++
			trackUUID = p.TrackDescriptor.UUID
			if want, have := "Events", p.TrackDescriptor.Name; want != have {
				t.Errorf("descriptor name: want %q, have %q", want, have)
			}
			if p.TrackDescriptor.Counter == nil {
				t.Fatalf("descriptor without counter identity")
			}
			if want, have := schema.UnitCount, p.TrackDescriptor.Counter.Unit; want != have {
				t.Errorf("descriptor unit: want %v, have %v", want, have)
			}
			if !p.TrackDescriptor.Counter.IsIncremental {
				t.Errorf("descriptor not marked incremental")
			}
		}
		if p.TrackEvent != nil {
			values++
			if want, have := schema.TypeCounter, p.TrackEvent.Type; want != have {
				t.Errorf("value type: want %v, have %v", want, have)
			}
			if p.SequenceFlags&schema.SeqNeedsIncrementalState != 0 {
				t.Errorf("counter packet flagged as needing incremental state")
			}
			if !p.TrackEvent.HasCounterValue && !p.TrackEvent.HasDoubleCounterValue {
				t.Errorf("counter event without a value")
			}
		}
	}

	if want, have := 1, descriptors; want != have {
		t.Errorf("want %d descriptor, have %d", want, have)
	}
	if want, have := 100, values; want != have {
		t.Errorf("want %d value packets, have %d", want, have)
	}

	for _, p := range trace.Packets {
		if p.TrackEvent != nil && p.TrackEvent.TrackUUID != trackUUID {
			t.Errorf("value packet on track %d, want %d", p.TrackEvent.TrackUUID, trackUUID)
		}
	}
}

func TestCounterCustomUnit(t *testing.T) {
	setEnabled(t, true)

	builder, err := NewTraceBuilder()
	if err != nil {
		t.Fatal(err)
	}

	builder.CreateCounterTrack("CPU Usage", UnitCustom("%"), 1, false)
	builder.CreateCounterTrack("Memory", UnitSizeBytes, 1024*1024, false)

	trace, err := schema.Unmarshal(builder.Encode())
	if err != nil {
		t.Fatal(err)
	}

	var counters []*schema.CounterDescriptor
	for _, p := range trace.Packets {
		if p.TrackDescriptor != nil && p.TrackDescriptor.Counter != nil {
			counters = append(counters, p.TrackDescriptor.Counter)
		}
	}
	if want, have := 2, len(counters); want != have {
		t.Fatalf("want %d counter descriptors, have %d", want, have)
	}

	if want, have := "%", counters[0].UnitName; want != have {
		t.Errorf("custom unit name: want %q, have %q", want, have)
	}
	if want, have := schema.UnitUnspecified, counters[0].Unit; want != have {
		t.Errorf("custom unit: want %v, have %v", want, have)
	}

	if want, have := schema.UnitSizeBytes, counters[1].Unit; want != have {
		t.Errorf("bytes unit: want %v, have %v", want, have)
	}
	if want, have := int64(1024*1024), counters[1].UnitMultiplier; want != have {
		t.Errorf("unit multiplier: want %d, have %d", want, have)
	}
}
