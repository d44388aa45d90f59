//go:build pftwallclock

package pft

import "time"

// The wall-clock policy: every sample is unix nanoseconds at capture, and no
// anchor conversion happens at encode time.

// Now returns the current time as an [Instant].
func Now() Instant {
	return Instant(time.Now().UnixNano())
}

type timeAnchor struct{}

func newTimeAnchor() timeAnchor {
	return timeAnchor{}
}

func (timeAnchor) unixNanos(t Instant) uint64 {
	return uint64(t)
}
