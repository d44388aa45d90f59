package pft

// An Instant is an opaque timestamp sampled by [Now]. What it holds depends
// on the clock policy the package was built with: by default it is a cheap
// monotonic reading, mapped to wall-clock nanoseconds only when a trace is
// encoded; with the pftwallclock tag it is wall-clock nanoseconds directly.
type Instant int64

// clockID tags every timestamped packet in the output. 6 is Perfetto's
// BUILTIN_CLOCK_BOOTTIME.
const clockID = 6
