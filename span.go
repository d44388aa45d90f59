package pft

import "github.com/pftrace/pft/internal/pftdebug"

// A SpanGuard ends a span when its End method is called. Guards are returned
// by [Log.StartSpan] and are intended for use with defer:
//
//	span := log.StartSpan(site)
//	defer span.End()
//
// A guard must be ended exactly once per exit path; End itself is idempotent,
// so an explicit early End followed by the deferred one is fine.
type SpanGuard struct {
	log  *Log
	site *SourceInfo
	live bool
}

// StartSpan begins a span at the given call site, recording the start
// marker, its timestamp, and each argument value in the order the site
// declares its argument names. len(args) must equal len(site.ArgNames).
//
// If recording is not enabled the call records nothing and returns an inert
// guard. A span begun while disabled stays silent even if recording is
// enabled before it ends.
func (l *Log) StartSpan(site *SourceInfo, args ...Arg) SpanGuard {
	if !Enabled() {
		pftdebug.SpanSuppressedCount.Add(1)
		return SpanGuard{}
	}

	pftdebug.SpanStartCount.Add(1)
	l.push(event{kind: evStartSpan, site: site})
	l.push(event{kind: evTimestamp, num: uint64(Now())})
	for i := range args {
		args[i].record(l)
	}

	return SpanGuard{log: l, site: site, live: true}
}

// End records the span's end marker and timestamp. Calling End on an inert
// or already-ended guard does nothing.
func (g *SpanGuard) End() {
	if !g.live {
		return
	}
	g.live = false

	g.log.push(event{kind: evEndSpan, site: g.site})
	g.log.push(event{kind: evTimestamp, num: uint64(Now())})
}
