// Package parcore provides a backend-agnostic parallel-dispatch API for
// shared-memory multicore machines: parallel-for, parallel-reduce, and
// parallel-scan over flat ranges, multi-dimensional ranges, and team-based
// hierarchical ranges.
//
// The package maps an abstract iteration space onto a fixed pool of
// OS-locked worker threads. Scheduling is either static (each thread
// executes one precomputed slice) or dynamic (idle threads claim chunks
// from a shared atomic cursor). Teams group consecutive pool threads so
// they can cooperate on one league entry and share scratch memory, with a
// reusable spin-wait rendezvous keeping members in step.
//
// Example usage:
//
//	rt, _ := parcore.NewRuntime()
//	defer rt.Close()
//
//	p, _ := parcore.NewRange(0, len(data))
//	parcore.For(rt, p, func(i int) {
//		data[i] *= 2
//	})
//
//	sum := parcore.Reduce(rt, p, func(i int, acc *int) {
//		*acc += data[i]
//	}, parcore.Sum[int]{})
//
// All dispatch calls block until the iteration space is exhausted. A
// dispatch issued from inside an executing parallel region degrades to
// sequential execution on the calling goroutine.
package parcore
