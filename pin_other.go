//go:build !linux

package parcore

// pinThread is a no-op on platforms without sched_setaffinity.
func pinThread(rank int) error {
	return nil
}
