// Package pft records timed spans and counter values with very low overhead,
// and converts the recorded data into a Perfetto trace file for viewing in
// the Perfetto UI (https://ui.perfetto.dev).
//
// The basic idea is to split the work into two phases with very different
// performance budgets. During the hot phase, instrumented code appends small
// fixed-shape events to a [Log] owned by its worker goroutine, with no locks,
// no encoding, and no allocation beyond the amortized growth of the log
// itself.
// Later, at a point where time is cheap, each log is drained into a [Capture]
// and fed to a [TraceBuilder], which reconstructs the spans, interns repeated
// names and source locations, and serializes the result.
//
// Recording is disabled until [Start] is called, and every recording call
// checks that flag first, so instrumentation left in production code costs a
// single atomic load when idle. Building with the pftoff tag removes even
// that: the flag becomes a compile-time false and recording calls compile
// down to no-ops.
//
// Each instrumented call site is described by a [SourceInfo], created once as
// a package-level variable:
//
//	var siteParse = pft.NewSourceInfo("parse", "path", "size")
//
//	func parse(log *pft.Log, path string, data []byte) {
//		span := log.StartSpan(siteParse, pft.String(path), pft.Uint(uint(len(data))))
//		defer span.End()
//		// ...
//	}
//
// A Log must only ever be used by the goroutine that owns it, and a
// TraceBuilder merging captures from many workers must be guarded by the
// caller. See [Log.Take] and [TraceBuilder.ProcessThreadData] for the exact
// contracts.
package pft
