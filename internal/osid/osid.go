// Package osid supplies the process and thread identity attached to drained
// captures and thread track descriptors. Values are in whatever form the OS
// reports, narrowed to the int32 the trace format carries.
package osid

import "os"

// PID returns the current process id.
func PID() int32 {
	return int32(os.Getpid())
}
