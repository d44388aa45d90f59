package pft

import (
	"errors"
	"sync/atomic"
)

// ErrDisabledAtBuildTime is returned by [Start] when the package was built
// with the pftoff tag, which compiles all recording out of the binary.
var ErrDisabledAtBuildTime = errors.New("pft: recording disabled at build time (pftoff)")

// ErrNotStarted is returned by [NewTraceBuilder] when [Start] has not been
// called.
var ErrNotStarted = errors.New("pft: recording not started")

var runtimeEnabled atomic.Bool

// Start enables recording for the rest of the process lifetime. It may be
// called any number of times; calls after the first have no effect, and
// recording is never turned off again. Spans begun before Start leave no
// trace and cannot be recovered.
//
// Start returns [ErrDisabledAtBuildTime] if the binary was built with the
// pftoff tag.
func Start() error {
	if !compiledIn {
		return ErrDisabledAtBuildTime
	}
	runtimeEnabled.Store(true)
	return nil
}

// Enabled reports whether recording is active. Recording calls check this
// internally; callers only need it to skip expensive argument preparation of
// their own.
func Enabled() bool {
	return compiledIn && runtimeEnabled.Load()
}
