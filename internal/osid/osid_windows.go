package osid

import "golang.org/x/sys/windows"

// TID returns the id of the calling thread. Note that a goroutine not locked
// to its OS thread may migrate between calls.
func TID() int32 {
	return int32(windows.GetCurrentThreadId())
}
