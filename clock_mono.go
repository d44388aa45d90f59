//go:build !pftwallclock

package pft

import "time"

// The default clock policy: Now samples the monotonic clock relative to a
// process-wide base, keeping the hot path free of wall-clock conversion. A
// TraceBuilder captures one wall/monotonic anchor pair at construction and
// uses it at encode time to map every sample to approximate unix
// nanoseconds.

var clockBase = time.Now()

// Now returns the current time as an [Instant].
func Now() Instant {
	return Instant(time.Since(clockBase))
}

type timeAnchor struct {
	wall int64 // unix nanos observed at anchor capture
	mono int64 // Instant observed at anchor capture
}

func newTimeAnchor() timeAnchor {
	now := time.Now()
	return timeAnchor{
		wall: now.UnixNano(),
		mono: int64(now.Sub(clockBase)),
	}
}

func (a timeAnchor) unixNanos(t Instant) uint64 {
	return uint64(a.wall + (int64(t) - a.mono))
}
