// Package pftdebug provides cheap global counters of recorder activity,
// for testing and benchmarking of the package itself.
package pftdebug

import "sync/atomic"

var (
	// EventRecordCount is incremented for every event pushed to a log.
	EventRecordCount atomic.Uint64

	// SpanStartCount is incremented for every span recorded.
	SpanStartCount atomic.Uint64

	// SpanSuppressedCount is incremented for every span dropped because
	// recording was not enabled.
	SpanSuppressedCount atomic.Uint64

	// LogTakeCount is incremented for every drain of a log.
	LogTakeCount atomic.Uint64
)
