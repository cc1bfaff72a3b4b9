//go:build linux

package parcore

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinThread binds the calling OS thread to a single CPU chosen by pool
// rank. Requires the goroutine to be locked to its thread.
func pinThread(rank int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(rank % runtime.NumCPU())
	return unix.SchedSetaffinity(0, &set)
}
