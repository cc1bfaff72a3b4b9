package parcore

import (
	"runtime"
	"sync/atomic"
)

// rendezvous is a reusable two-phase spin barrier.
//
// Every participant calls arrive. Exactly one caller, the last to arrive,
// receives true and is responsible for any single-threaded finishing work
// before calling release, which unblocks the other participants. All other
// callers receive false after release has happened.
//
// The barrier is reusable immediately after release: the arrival counter is
// reset before the generation advances, so an early re-arrival in the next
// cycle cannot be lost. No allocation and no OS-level primitives on the hot
// path; waiters spin on the generation word and yield to the scheduler
// periodically so oversubscribed pools cannot livelock.
type rendezvous struct {
	size    int
	arrived atomic.Int32
	gen     atomic.Uint32
}

// reset sets the participant count. Must not be called while any
// participant is between arrive and release.
func (r *rendezvous) reset(size int) {
	r.size = size
	r.arrived.Store(0)
}

// arrive blocks until all size participants have arrived. Returns true for
// the last arriver, which must call release; all others return false only
// after release.
func (r *rendezvous) arrive() bool {
	gen := r.gen.Load()
	if int(r.arrived.Add(1)) == r.size {
		return true
	}
	for spins := 1; r.gen.Load() == gen; spins++ {
		if spins%spinYieldInterval == 0 {
			runtime.Gosched()
		}
	}
	return false
}

// release unblocks the waiters of the current cycle. Only the arrive caller
// that received true may call it, exactly once per cycle.
func (r *rendezvous) release() {
	// Counter first: once the generation advances, released participants
	// may immediately arrive for the next cycle.
	r.arrived.Store(0)
	r.gen.Add(1)
}

// sync is the common arrive-then-release pattern with no finishing work.
func (r *rendezvous) sync() {
	if r.arrive() {
		r.release()
	}
}
