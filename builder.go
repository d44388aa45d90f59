package pft

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/pftrace/pft/internal/schema"
)

// A TraceBuilder replays captures drained from worker logs, reconstructs the
// spans and their arguments, and accumulates the resulting packet sequence
// until it is serialized with [TraceBuilder.Encode] or
// [TraceBuilder.WriteFile].
//
// Repeated span names, argument names, and source locations are interned:
// registered once, in a batch attached to the first packet that needs them,
// and referenced by small sequential ids afterwards. Each worker thread gets
// one track, identified by a random 64-bit uuid and declared by a descriptor
// packet the first time its thread id is seen.
//
// A builder is a single-owner accumulator with no internal locking. Feeding
// it from more than one goroutine, including via the counter-recording
// methods, requires the caller to serialize the calls, typically with one
// mutex around the builder.
//
// Typical usage:
//
//	builder, err := pft.NewTraceBuilder()
//	if err != nil {
//		return err
//	}
//	builder.ProcessThreadData(log.Take())
//	if err := builder.WriteFile("out.pftrace"); err != nil {
//		return err
//	}
type TraceBuilder struct {
	trace       schema.Trace
	pending     *schema.InternedData
	nameIDs     map[string]uint64
	annNameIDs  map[string]uint64
	locIDs      map[sourceKey]uint64
	threadUUIDs map[int32]uint64
	sequenceID  uint32
	anchor      timeAnchor
}

// sourceKey identifies an interned source location. Two sites at the same
// file and line share an entry.
type sourceKey struct {
	file string
	line int
}

// NewTraceBuilder returns an empty builder tagged with a fresh random
// sequence id. It fails with [ErrNotStarted] if [Start] has not been called.
func NewTraceBuilder() (*TraceBuilder, error) {
	if !Enabled() {
		return nil, ErrNotStarted
	}

	b := &TraceBuilder{
		nameIDs:     map[string]uint64{},
		annNameIDs:  map[string]uint64{},
		locIDs:      map[sourceKey]uint64{},
		threadUUIDs: map[int32]uint64{},
		sequenceID:  rand.Uint32(),
		anchor:      newTimeAnchor(),
	}

	// Declare that any interned state a reader may associate with this
	// sequence id is void.
	b.addPacket(schema.TracePacket{
		SequenceFlags: schema.SeqIncrementalStateCleared,
	})

	return b, nil
}

// ProcessThreadData merges one capture into the trace, consuming it. The
// first capture for a given thread id also emits that thread's track
// descriptor; later captures with the same id reuse the track.
//
// The capture must be well formed, which every capture produced by this
// package is. A malformed event sequence means a bug in the recording code
// itself and makes ProcessThreadData panic rather than return an error.
//
// It returns the builder to allow chaining into Encode or WriteFile.
func (b *TraceBuilder) ProcessThreadData(c *Capture) *TraceBuilder {
	trackUUID := b.threadTrackUUID(c)

	events := c.events
	for i := 0; i < len(events); {
		ev := events[i]
		i++
		switch ev.kind {
		case evStartSpan:
			i = b.emitSpanEvent(ev.site, schema.TypeSliceBegin, events, i, trackUUID)
		case evEndSpan:
			i = b.emitSpanEvent(ev.site, schema.TypeSliceEnd, events, i, trackUUID)
		default:
			panic(fmt.Sprintf("pft: internal error: unexpected %v event at top level", ev.kind))
		}
	}

	return b
}

// Encode serializes the accumulated packets in the Perfetto wire format. It
// doesn't modify the builder; more captures can be processed and encoded
// again afterwards.
func (b *TraceBuilder) Encode() []byte {
	return b.trace.Marshal()
}

// WriteFile writes the encoded trace to path, replacing any existing file.
// The result is what the Perfetto UI opens directly.
func (b *TraceBuilder) WriteFile(path string) error {
	if err := os.WriteFile(path, b.Encode(), 0o644); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

//
//
//

// emitSpanEvent consumes the timestamp (and, for begins, the argument run)
// that follows a span marker, emits the corresponding track-event packet,
// and returns the index of the next unconsumed event.
func (b *TraceBuilder) emitSpanEvent(site *SourceInfo, typ schema.TrackEventType, events []event, i int, trackUUID uint64) int {
	if i >= len(events) || events[i].kind != evTimestamp {
		panic("pft: internal error: timestamp must follow span markers")
	}
	ts := Instant(events[i].num)
	i++

	te := &schema.TrackEvent{
		Type:              typ,
		TrackUUID:         trackUUID,
		NameIID:           b.nameID(site.Name),
		SourceLocationIID: b.sourceLocationID(site),
	}

	if typ == schema.TypeSliceBegin && len(site.ArgNames) > 0 {
		te.Annotations = make([]schema.DebugAnnotation, 0, len(site.ArgNames))
		for _, argName := range site.ArgNames {
			var ann schema.DebugAnnotation
			ann, i = decodeNextArg(events, i)
			ann.NameIID = b.annotationNameID(argName)
			te.Annotations = append(te.Annotations, ann)
		}
	}

	// The event references interned iids, so the packet must be flagged as
	// depending on the sequence's incremental state.
	b.addPacket(schema.TracePacket{
		HasTimestamp:     true,
		Timestamp:        b.anchor.unixNanos(ts),
		TimestampClockID: clockID,
		TrackEvent:       te,
		SequenceFlags:    schema.SeqNeedsIncrementalState,
		Interned:         b.takePending(),
	})

	return i
}

// decodeNextArg decodes one argument value starting at events[i] and returns
// it with the index of the next unconsumed event. A chunk event begins an
// accumulation loop that runs until the chunk end.
func decodeNextArg(events []event, i int) (schema.DebugAnnotation, int) {
	if i >= len(events) {
		panic("pft: internal error: ran out of events while decoding span arguments")
	}
	ev := events[i]
	i++

	var ann schema.DebugAnnotation
	switch ev.kind {
	case evBool:
		ann.Kind = schema.ValueBool
		ann.Bool = ev.num != 0
	case evUint64:
		ann.Kind = schema.ValueUint
		ann.Uint = ev.num
	case evInt64:
		ann.Kind = schema.ValueInt
		ann.Int = int64(ev.num)
	case evFloat64:
		ann.Kind = schema.ValueDouble
		ann.Double = math.Float64frombits(ev.num)
	case evOwnedText:
		ann.Kind = schema.ValueString
		ann.Str = ev.str
	case evTextChunkEnd:
		ann.Kind = schema.ValueString
		ann.Str = string(ev.chunk[:ev.num])
	case evTextChunk:
		merged := append([]byte(nil), ev.chunk[:]...)
	accumulate:
		for {
			if i >= len(events) {
				panic("pft: internal error: ran out of events while looking for a chunk end")
			}
			next := events[i]
			i++
			switch next.kind {
			case evTextChunk:
				merged = append(merged, next.chunk[:]...)
			case evTextChunkEnd:
				merged = append(merged, next.chunk[:next.num]...)
				break accumulate
			default:
				panic(fmt.Sprintf("pft: internal error: unexpected %v event while looking for a chunk end", next.kind))
			}
		}
		ann.Kind = schema.ValueString
		ann.Str = string(merged)
	default:
		panic(fmt.Sprintf("pft: internal error: unexpected %v event as span argument", ev.kind))
	}

	return ann, i
}

// threadTrackUUID resolves the capture's thread id to its track, minting the
// uuid and emitting the descriptor packet on first sight.
func (b *TraceBuilder) threadTrackUUID(c *Capture) uint64 {
	if uuid, ok := b.threadUUIDs[c.tid]; ok {
		return uuid
	}

	uuid := newTrackUUID()

	b.addPacket(schema.TracePacket{
		TrackDescriptor: &schema.TrackDescriptor{
			UUID: uuid,
			Thread: &schema.ThreadDescriptor{
				PID:        c.pid,
				TID:        c.tid,
				ThreadName: c.threadName,
			},
		},
	})

	b.threadUUIDs[c.tid] = uuid

	return uuid
}

func (b *TraceBuilder) nameID(name string) uint64 {
	if id, ok := b.nameIDs[name]; ok {
		return id
	}
	id := uint64(len(b.nameIDs)) + 1
	b.nameIDs[name] = id
	p := b.pendingInterned()
	p.EventNames = append(p.EventNames, schema.EventName{IID: id, Name: name})
	return id
}

func (b *TraceBuilder) annotationNameID(name string) uint64 {
	if id, ok := b.annNameIDs[name]; ok {
		return id
	}
	id := uint64(len(b.annNameIDs)) + 1
	b.annNameIDs[name] = id
	p := b.pendingInterned()
	p.DebugAnnotationNames = append(p.DebugAnnotationNames, schema.DebugAnnotationName{IID: id, Name: name})
	return id
}

func (b *TraceBuilder) sourceLocationID(site *SourceInfo) uint64 {
	key := sourceKey{file: site.File, line: site.Line}
	if id, ok := b.locIDs[key]; ok {
		return id
	}
	id := uint64(len(b.locIDs)) + 1
	b.locIDs[key] = id
	p := b.pendingInterned()
	p.SourceLocations = append(p.SourceLocations, schema.SourceLocation{
		IID:        id,
		FileName:   site.File,
		LineNumber: uint32(site.Line),
	})
	return id
}

// pendingInterned returns the batch of interning entries awaiting emission,
// creating it if necessary. takePending hands the batch to a packet and
// clears it.
func (b *TraceBuilder) pendingInterned() *schema.InternedData {
	if b.pending == nil {
		b.pending = &schema.InternedData{}
	}
	return b.pending
}

func (b *TraceBuilder) takePending() *schema.InternedData {
	p := b.pending
	b.pending = nil
	return p
}

func (b *TraceBuilder) addPacket(p schema.TracePacket) {
	p.SequenceID = b.sequenceID
	b.trace.Packets = append(b.trace.Packets, p)
}

// newTrackUUID draws a random 64-bit track identifier. Uniqueness is
// probabilistic, not coordinated; that matches what the trace format
// expects of ad-hoc producers.
func newTrackUUID() uint64 {
	return rand.Uint64()
}
