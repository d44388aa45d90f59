package pft

import "testing"

var siteSpanTest = NewSourceInfo("span test", "value", "note")

func TestSpanEventSequence(t *testing.T) {
	setEnabled(t, true)

	log := NewLog()
	span := log.StartSpan(siteSpanTest, Uint(uint64(1)), String("hi"))
	span.End()

	kinds := make([]eventKind, 0, log.Len())
	for _, ev := range log.events {
		kinds = append(kinds, ev.kind)
	}

	want := []eventKind{evStartSpan, evTimestamp, evUint64, evOwnedText, evEndSpan, evTimestamp}
	if len(want) != len(kinds) {
		t.Fatalf("want %d events, have %d (%v)", len(want), len(kinds), kinds)
	}
	for i := range want {
		if want[i] != kinds[i] {
			t.Errorf("event %d: want %v, have %v", i, want[i], kinds[i])
		}
	}

	if want, have := siteSpanTest, log.events[0].site; want != have {
		t.Errorf("start marker site: want %p, have %p", want, have)
	}
	if want, have := siteSpanTest, log.events[4].site; want != have {
		t.Errorf("end marker site: want %p, have %p", want, have)
	}
}

func TestPreActivationSuppression(t *testing.T) {
	setEnabled(t, false)

	log := NewLog()
	span := log.StartSpan(siteSpanTest, Uint(uint64(1)), String("hi"))

	// Even if recording is enabled between start and end, a span begun while
	// disabled must stay silent.
	runtimeEnabled.Store(true)
	span.End()

	if want, have := 0, log.Len(); want != have {
		t.Errorf("want %d events, have %d", want, have)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	setEnabled(t, true)

	site := NewSourceInfo("idempotent end")
	log := NewLog()

	func() {
		span := log.StartSpan(site)
		defer span.End()
		span.End() // explicit early end; the deferred end must be a no-op
	}()

	if want, have := EventsPerSpan, log.Len(); want != have {
		t.Errorf("want %d events, have %d", want, have)
	}
}

func TestInertGuardEnd(t *testing.T) {
	// The zero guard, as returned when recording is disabled, must tolerate
	// End without a log to write to.
	var span SpanGuard
	span.End()
}

func TestReserve(t *testing.T) {
	setEnabled(t, true)

	log := NewLog()
	log.Reserve(100)
	if cap(log.events) < 100 {
		t.Fatalf("want capacity >= 100, have %d", cap(log.events))
	}

	span := log.StartSpan(siteSpanTest, Uint(uint64(1)), String("x"))
	span.End()
	if want, have := EventsPerSpan+2*EventsPerArg, log.Len(); want != have {
		t.Errorf("want %d events, have %d", want, have)
	}

	// Reserving less than the free capacity must not shrink anything.
	before := cap(log.events)
	log.Reserve(1)
	if cap(log.events) != before {
		t.Errorf("capacity changed from %d to %d", before, cap(log.events))
	}
}

func TestTakeDrains(t *testing.T) {
	setEnabled(t, true)

	log := NewLog()
	log.SetName("worker-7")
	span := log.StartSpan(siteSpanTest, Uint(uint64(1)), String("x"))
	span.End()

	c := log.Take()
	if want, have := EventsPerSpan+2*EventsPerArg, len(c.events); want != have {
		t.Errorf("capture: want %d events, have %d", want, have)
	}
	if want, have := "worker-7", c.threadName; want != have {
		t.Errorf("capture name: want %q, have %q", want, have)
	}
	if c.pid == 0 {
		t.Errorf("capture pid: want nonzero")
	}
	if c.tid == 0 {
		t.Errorf("capture tid: want nonzero")
	}

	if want, have := 0, log.Len(); want != have {
		t.Errorf("log after take: want %d events, have %d", want, have)
	}

	// The drained log keeps working.
	span = log.StartSpan(siteSpanTest, Uint(uint64(2)), String("y"))
	span.End()
	if want, have := EventsPerSpan+2*EventsPerArg, len(log.Take().events); want != have {
		t.Errorf("second capture: want %d events, have %d", want, have)
	}
}
