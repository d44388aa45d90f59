//go:build !linux && !windows

package osid

import "os"

// TID falls back to the process id on platforms without a cheap thread-id
// syscall. Tracks from different workers in one process then share an id, so
// give each worker Log a distinct name to keep them apart in the UI.
func TID() int32 {
	return int32(os.Getpid())
}
