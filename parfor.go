package parcore

// execRange invokes f for every index in [lo, hi) in increasing order.
func execRange(f func(int), lo, hi int) {
	for i := lo; i < hi; i++ {
		f(i)
	}
}

// For executes f once per index of the flat range, in parallel across the
// pool. Iteration order is increasing within a thread's partition; there
// is no ordering guarantee across threads. The call blocks until the range
// is exhausted. Invoked from inside an executing parallel region it runs
// sequentially on the calling goroutine.
func For(rt *Runtime, p RangePolicy, f func(i int)) {
	n := p.extent()
	if n <= 0 {
		return
	}
	if !rt.enter() {
		execRange(f, p.Begin, p.End)
		return
	}
	defer rt.exit()

	dynamic := p.Sched == Dynamic
	rt.setWorkPartition(n, p.Chunk, rt.nthreads)

	rt.launch(func(rank int) {
		if dynamic {
			for {
				lo, hi := rt.stealChunk()
				if lo < 0 {
					break
				}
				execRange(f, p.Begin+lo, p.Begin+hi)
			}
			return
		}
		lo, hi := staticPartition(rank, rt.nthreads, n)
		execRange(f, p.Begin+lo, p.Begin+hi)
	})
}

// ForMD executes f once per coordinate of the multi-dimensional range.
// The flat dispatch index addresses tiles; each claimed tile is expanded
// deterministically in row-major order. The coordinate buffer passed to f
// is reused between invocations on the same thread and must not be
// retained.
func ForMD(rt *Runtime, p MDRangePolicy, f func(idx []int)) {
	ntiles := p.numTiles
	if ntiles <= 0 {
		return
	}
	rank := p.Rank()

	execTiles := func(tlo, thi int, lo, hi, idx []int) {
		for t := tlo; t < thi; t++ {
			p.tileBounds(t, lo, hi)
			iterateTile(lo, hi, idx, f)
		}
	}

	if !rt.enter() {
		lo, hi, idx := make([]int, rank), make([]int, rank), make([]int, rank)
		execTiles(0, ntiles, lo, hi, idx)
		return
	}
	defer rt.exit()

	dynamic := p.Sched == Dynamic
	chunk := p.Chunk
	if chunk <= 0 {
		chunk = 1 // tiles are already coarse units of work
	}
	rt.setWorkPartition(ntiles, chunk, rt.nthreads)

	rt.launch(func(prank int) {
		lo, hi, idx := make([]int, rank), make([]int, rank), make([]int, rank)
		if dynamic {
			for {
				tlo, thi := rt.stealChunk()
				if tlo < 0 {
					break
				}
				execTiles(tlo, thi, lo, hi, idx)
			}
			return
		}
		tlo, thi := staticPartition(prank, rt.nthreads, ntiles)
		execTiles(tlo, thi, lo, hi, idx)
	})
}

// execTeamRange runs one team through league ranks [lo, hi). Members
// rendezvous between consecutive ranks so nobody begins overwriting the
// shared window before peers finish consuming the previous rank's
// contents.
func execTeamRange(m *TeamMember, f func(*TeamMember), lo, hi int) {
	for r := lo; r < hi; {
		m.leagueRank = r
		f(m)
		r++
		if r < hi {
			m.TeamBarrier()
		}
	}
}

// ForTeams executes f once per (league rank, team rank) pair. Consecutive
// pool threads are grouped into teams of p.TeamSize; each league entry is
// handled by exactly one team. Trailing threads that do not fill a team
// sit the dispatch out. Panics with a configuration error if the team
// size exceeds the pool size.
func ForTeams(rt *Runtime, p TeamPolicy, f func(m *TeamMember)) {
	if p.LeagueSize <= 0 || p.TeamSize <= 0 {
		return
	}
	if !rt.enter() {
		m := &TeamMember{
			leagueSize: p.LeagueSize,
			teamSize:   1,
			sequential: true,
			shared:     make([]byte, p.SharedSize),
		}
		for l := 0; l < p.LeagueSize; l++ {
			m.leagueRank = l
			f(m)
		}
		return
	}
	defer rt.exit()

	teamSize := p.TeamSize
	if teamSize > rt.nthreads {
		rt.log.Error().Int("team", teamSize).Int("threads", rt.nthreads).Msg("team size exceeds pool size")
		panic(NewConfigError("ForTeams", "team size exceeds pool size"))
	}
	teamCount := rt.nthreads / teamSize
	dynamic := p.Sched == Dynamic

	rt.ensureScratch(0, TeamReduceSize*teamSize, p.SharedSize, 0)
	rt.setWorkPartition(p.LeagueSize, p.Chunk, teamCount)

	rt.launch(func(rank int) {
		s := rt.slot(rank)
		if s.organizeTeam(rt, teamSize) {
			m := &TeamMember{
				rt:         rt,
				slot:       s,
				leagueSize: p.LeagueSize,
				teamRank:   s.teamRank,
				teamSize:   teamSize,
				shared:     s.teamBase.teamSharedWindow(p.SharedSize),
			}
			if dynamic {
				for {
					lo, hi := s.teamStealChunk(rt)
					if lo < 0 {
						break
					}
					execTeamRange(m, f, lo, hi)
				}
			} else {
				lo, hi := staticPartition(s.teamIndex, teamCount, p.LeagueSize)
				execTeamRange(m, f, lo, hi)
			}
		}
		s.disbandTeam(rt)
	})
}
