package pft

import (
	"github.com/pftrace/pft/internal/osid"
	"github.com/pftrace/pft/internal/pftdebug"
)

// A Log accumulates the events recorded by a single worker goroutine. It is
// push-only and entirely unsynchronized: the goroutine that created it is the
// only one that may start spans on it or drain it. Give each worker its own
// Log and merge the drained captures in one [TraceBuilder] afterwards.
//
// The zero value is ready to use.
type Log struct {
	events []event
	name   string
}

// NewLog returns an empty log for the calling goroutine.
func NewLog() *Log {
	return &Log{}
}

// SetName sets the worker name attached to captures drained from this log.
// It shows up as the thread name on the trace track. The OS exposes no
// per-goroutine name, so this is the caller's to choose.
func (l *Log) SetName(name string) {
	l.name = name
}

// Reserve pre-grows the log to hold n additional events without
// reallocation. Entirely optional; it only makes recording latency more
// consistent. See [EventsPerSpan] and [EventsPerArg] for sizing.
func (l *Log) Reserve(n int) {
	if free := cap(l.events) - len(l.events); free < n {
		grown := make([]event, len(l.events), len(l.events)+n)
		copy(grown, l.events)
		l.events = grown
	}
}

// Len returns the number of events currently in the log.
func (l *Log) Len() int {
	return len(l.events)
}

func (l *Log) push(ev event) {
	pftdebug.EventRecordCount.Add(1)
	l.events = append(l.events, ev)
}

// pushChunked emits every full 15-byte window of b as a chunk event and the
// final 0..15 byte window, zero-padded, as the chunk end with its true
// length.
func (l *Log) pushChunked(b []byte) {
	for len(b) > textChunkLen {
		var ev event
		ev.kind = evTextChunk
		copy(ev.chunk[:], b[:textChunkLen])
		l.push(ev)
		b = b[textChunkLen:]
	}
	var ev event
	ev.kind = evTextChunkEnd
	ev.num = uint64(len(b))
	copy(ev.chunk[:], b)
	l.push(ev)
}

// A Capture is an immutable snapshot of one worker's recorded events,
// bundled with the OS identity of the thread it was drained on. Captures are
// produced by [Log.Take] and consumed exactly once by
// [TraceBuilder.ProcessThreadData].
type Capture struct {
	events     []event
	pid        int32
	tid        int32
	threadName string
}

// Take drains the log: the accumulated events move into the returned
// Capture, and the log is left empty. Take must be called on, or fully
// synchronized with, the goroutine that owns the log, the same contract as
// every other Log method.
//
// Take marks the boundary between the cheap recording phase and the
// comparatively expensive encoding phase, so it is the natural point to
// hand data off to whatever owns the TraceBuilder.
func (l *Log) Take() *Capture {
	pftdebug.LogTakeCount.Add(1)
	events := l.events
	l.events = nil
	return &Capture{
		events:     events,
		pid:        osid.PID(),
		tid:        osid.TID(),
		threadName: l.name,
	}
}
