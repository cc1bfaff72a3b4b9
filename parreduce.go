package parcore

import (
	"unsafe"
)

// Reduce combines f's per-index contributions across the flat range and
// returns the merged value. Each pool thread accumulates into a private
// accumulator initialized by the reducer; after the region closes, the
// invoking thread joins the partials in slot-index order (deterministic
// for a fixed pool size, though floating-point results may differ between
// pool sizes) and applies Final once.
//
// A zero-extent range never invokes f but still yields the reducer's
// finalized identity.
//
// The accumulator type must be free of interior pointers; it lives in the
// per-thread scratch arena.
func Reduce[T any](rt *Runtime, p RangePolicy, f func(i int, acc *T), red Reducer[T]) T {
	var result T
	ReduceInto(rt, p, f, red, &result)
	return result
}

// ReduceInto is Reduce with a caller-supplied result slot: the merged,
// finalized bytes are copied into result before the call returns.
func ReduceInto[T any](rt *Runtime, p RangePolicy, f func(i int, acc *T), red Reducer[T], result *T) {
	n := p.extent()
	if n <= 0 {
		red.Init(result)
		red.Final(result)
		return
	}
	if !rt.enter() {
		var acc T
		red.Init(&acc)
		for i := p.Begin; i < p.End; i++ {
			f(i, &acc)
		}
		red.Final(&acc)
		*result = acc
		return
	}
	defer rt.exit()

	var zero T
	rt.ensureScratch(int(unsafe.Sizeof(zero)), 0, 0, 0)

	dynamic := p.Sched == Dynamic
	rt.setWorkPartition(n, p.Chunk, rt.nthreads)

	rt.launch(func(rank int) {
		acc := reduceValue[T](rt.slot(rank), 0)
		red.Init(acc)
		if dynamic {
			for {
				lo, hi := rt.stealChunk()
				if lo < 0 {
					break
				}
				for i := p.Begin + lo; i < p.Begin+hi; i++ {
					f(i, acc)
				}
			}
			return
		}
		lo, hi := staticPartition(rank, rt.nthreads, n)
		for i := p.Begin + lo; i < p.Begin+hi; i++ {
			f(i, acc)
		}
	})

	mergePartials(rt, red, result)
}

// mergePartials joins every slot's accumulator into slot 0's, in
// increasing slot order, finalizes, and copies the value out. Runs on the
// invoking thread after the region has fully joined.
func mergePartials[T any](rt *Runtime, red Reducer[T], result *T) {
	ptr := reduceValue[T](rt.slot(0), 0)
	for i := 1; i < rt.nthreads; i++ {
		red.Join(ptr, reduceValue[T](rt.slot(i), 0))
	}
	red.Final(ptr)
	*result = *ptr
}

// ReduceMD combines f's per-coordinate contributions across the
// multi-dimensional range. Tile expansion follows ForMD; the coordinate
// buffer is reused between invocations on the same thread.
func ReduceMD[T any](rt *Runtime, p MDRangePolicy, f func(idx []int, acc *T), red Reducer[T]) T {
	var result T
	ntiles := p.numTiles
	if ntiles <= 0 {
		red.Init(&result)
		red.Final(&result)
		return result
	}
	rank := p.Rank()

	execTiles := func(tlo, thi int, lo, hi, idx []int, acc *T) {
		for t := tlo; t < thi; t++ {
			p.tileBounds(t, lo, hi)
			iterateTile(lo, hi, idx, func(idx []int) {
				f(idx, acc)
			})
		}
	}

	if !rt.enter() {
		lo, hi, idx := make([]int, rank), make([]int, rank), make([]int, rank)
		red.Init(&result)
		execTiles(0, ntiles, lo, hi, idx, &result)
		red.Final(&result)
		return result
	}
	defer rt.exit()

	var zero T
	rt.ensureScratch(int(unsafe.Sizeof(zero)), 0, 0, 0)

	dynamic := p.Sched == Dynamic
	chunk := p.Chunk
	if chunk <= 0 {
		chunk = 1
	}
	rt.setWorkPartition(ntiles, chunk, rt.nthreads)

	rt.launch(func(prank int) {
		lo, hi, idx := make([]int, rank), make([]int, rank), make([]int, rank)
		acc := reduceValue[T](rt.slot(prank), 0)
		red.Init(acc)
		if dynamic {
			for {
				tlo, thi := rt.stealChunk()
				if tlo < 0 {
					break
				}
				execTiles(tlo, thi, lo, hi, idx, acc)
			}
			return
		}
		tlo, thi := staticPartition(prank, rt.nthreads, ntiles)
		execTiles(tlo, thi, lo, hi, idx, acc)
	})

	mergePartials(rt, red, &result)
	return result
}

// ReduceTeams combines f's contributions across every (league rank, team
// rank) pair. Inactive threads contribute the reducer's identity. See
// ForTeams for the team organization rules.
func ReduceTeams[T any](rt *Runtime, p TeamPolicy, f func(m *TeamMember, acc *T), red Reducer[T]) T {
	var result T
	if p.LeagueSize <= 0 || p.TeamSize <= 0 {
		red.Init(&result)
		red.Final(&result)
		return result
	}
	if !rt.enter() {
		m := &TeamMember{
			leagueSize: p.LeagueSize,
			teamSize:   1,
			sequential: true,
			shared:     make([]byte, p.SharedSize),
		}
		red.Init(&result)
		for l := 0; l < p.LeagueSize; l++ {
			m.leagueRank = l
			f(m, &result)
		}
		red.Final(&result)
		return result
	}
	defer rt.exit()

	teamSize := p.TeamSize
	if teamSize > rt.nthreads {
		rt.log.Error().Int("team", teamSize).Int("threads", rt.nthreads).Msg("team size exceeds pool size")
		panic(NewConfigError("ReduceTeams", "team size exceeds pool size"))
	}
	teamCount := rt.nthreads / teamSize
	dynamic := p.Sched == Dynamic

	var zero T
	rt.ensureScratch(int(unsafe.Sizeof(zero)), TeamReduceSize*teamSize, p.SharedSize, 0)
	rt.setWorkPartition(p.LeagueSize, p.Chunk, teamCount)

	rt.launch(func(rank int) {
		s := rt.slot(rank)
		acc := reduceValue[T](s, 0)
		if s.organizeTeam(rt, teamSize) {
			red.Init(acc)
			m := &TeamMember{
				rt:         rt,
				slot:       s,
				leagueSize: p.LeagueSize,
				teamRank:   s.teamRank,
				teamSize:   teamSize,
				shared:     s.teamBase.teamSharedWindow(p.SharedSize),
			}
			exec := func(lo, hi int) {
				for r := lo; r < hi; {
					m.leagueRank = r
					f(m, acc)
					r++
					if r < hi {
						m.TeamBarrier()
					}
				}
			}
			if dynamic {
				for {
					lo, hi := s.teamStealChunk(rt)
					if lo < 0 {
						break
					}
					exec(lo, hi)
				}
			} else {
				lo, hi := staticPartition(s.teamIndex, teamCount, p.LeagueSize)
				exec(lo, hi)
			}
		} else {
			red.Init(acc)
		}
		s.disbandTeam(rt)
	})

	mergePartials(rt, red, &result)
	return result
}
