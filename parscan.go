package parcore

import (
	"unsafe"
)

// Scan executes a two-phase exclusive prefix scan over the flat range.
//
// The range is divided statically, one slice per pool thread (scan is
// never combined with work stealing: the sequencing of partial sums needs
// a fixed, known partition order). Phase one runs every slice with
// final=false, accumulating a thread-local sum; the functor must suppress
// its output side effects in this mode. A rendezvous then lets exactly one
// thread sweep the thread-local sums in increasing slot order into
// per-thread exclusive bases. Phase two re-runs every slice with
// final=true, accumulating from the precomputed base, and the functor
// performs its real per-index write.
//
// The reducer supplies the identity and combine for the accumulator type;
// Final is never applied in a scan. The accumulator type must be free of
// interior pointers.
func Scan[T any](rt *Runtime, p RangePolicy, f func(i int, acc *T, final bool), red Reducer[T]) {
	scanImpl(rt, p, f, red, nil)
}

// ScanTotal is Scan returning the grand total: the value the accumulator
// holds after the last index of the range, equal to the inclusive sum of
// all contributions.
func ScanTotal[T any](rt *Runtime, p RangePolicy, f func(i int, acc *T, final bool), red Reducer[T]) T {
	var total T
	scanImpl(rt, p, f, red, &total)
	return total
}

func scanImpl[T any](rt *Runtime, p RangePolicy, f func(i int, acc *T, final bool), red Reducer[T], total *T) {
	n := p.extent()
	if n <= 0 {
		if total != nil {
			red.Init(total)
		}
		return
	}
	if !rt.enter() {
		var acc T
		red.Init(&acc)
		for i := p.Begin; i < p.End; i++ {
			f(i, &acc, true)
		}
		if total != nil {
			*total = acc
		}
		return
	}
	defer rt.exit()

	// Two value slots per thread: index 0 the local phase-one sum, index 1
	// the exclusive base fed to phase two.
	var zero T
	rt.ensureScratch(2*int(unsafe.Sizeof(zero)), 0, 0, 0)

	nthreads := rt.nthreads
	rt.launch(func(rank int) {
		s := rt.slot(rank)
		lo, hi := staticPartition(rank, nthreads, n)

		local := reduceValue[T](s, 0)
		red.Init(local)
		for i := p.Begin + lo; i < p.Begin+hi; i++ {
			f(i, local, false)
		}

		if rt.poolBarrier.arrive() {
			// Single-threaded sweep: base[i] = base[i-1] joined with
			// local[i-1], strictly after every local pass and strictly
			// before any final pass.
			var prev *ThreadSlot
			for i := 0; i < nthreads; i++ {
				cur := rt.slot(i)
				base := reduceValue[T](cur, 1)
				if prev == nil {
					red.Init(base)
				} else {
					*base = *reduceValue[T](prev, 1)
					red.Join(base, reduceValue[T](prev, 0))
				}
				prev = cur
			}
			rt.poolBarrier.release()
		}

		base := reduceValue[T](s, 1)
		for i := p.Begin + lo; i < p.Begin+hi; i++ {
			f(i, base, true)
		}

		if total != nil && rank == nthreads-1 {
			*total = *base
		}
	})
}
