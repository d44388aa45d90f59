package osid

import "golang.org/x/sys/unix"

// TID returns the kernel thread id of the calling thread. Note that a
// goroutine not locked to its OS thread may migrate between calls.
func TID() int32 {
	return int32(unix.Gettid())
}
