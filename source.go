package pft

import "runtime"

// SourceInfo describes one instrumented call site: a display name, the file
// and line the site lives at, and the names of the arguments recorded with
// each span started there.
//
// Create exactly one SourceInfo per call site, as a package-level variable,
// and pass the same pointer to every [Log.StartSpan] at that site. The
// pointer's stability is what lets the [TraceBuilder] intern names and
// locations without comparing strings on every span. A SourceInfo must never
// be mutated after creation.
type SourceInfo struct {
	Name     string
	File     string
	Line     int
	ArgNames []string
}

// NewSourceInfo returns a descriptor for the call site of the caller. The
// file and line are captured from the calling frame, so the intended use is
// direct assignment to a package-level variable next to the instrumented
// code:
//
//	var siteResize = pft.NewSourceInfo("resize image", "width", "height")
//
// Every span started with this descriptor must supply exactly
// len(argNames) arguments, in the same order.
func NewSourceInfo(name string, argNames ...string) *SourceInfo {
	_, file, line, _ := runtime.Caller(1)
	return &SourceInfo{
		Name:     name,
		File:     file,
		Line:     line,
		ArgNames: argNames,
	}
}
