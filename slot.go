package parcore

import (
	"unsafe"
)

// ThreadSlot is the per-thread state block of the pool. Each slot owns a
// byte arena subdivided into a pool-reduce region (per-thread reduction and
// scan accumulators), a team-reduce region, a team-shared region (the
// window handed to team members), and a thread-local region. The arena is
// resized, never shrunk, by the invoking thread before a parallel region
// opens; it is never resized concurrently.
//
// A slot also carries the transient team state between organizeTeam and
// disbandTeam.
type ThreadSlot struct {
	rank  int
	arena []byte

	poolReduceOff, poolReduceCap int
	teamReduceOff, teamReduceCap int
	teamSharedOff, teamSharedCap int
	localOff, localCap           int

	// Team state, valid only between organizeTeam and disbandTeam.
	teamBarrier rendezvous
	teamBase    *ThreadSlot
	teamIndex   int
	teamRank    int
	teamSize    int
	active      bool

	// Work-stealing window claimed by a team, published by the team
	// barrier in teamStealChunk.
	stealLo, stealHi int
}

// Rank returns the slot's fixed index within the pool.
func (s *ThreadSlot) Rank() int {
	return s.rank
}

// alignUp rounds n up to the arena alignment.
func alignUp(n int) int {
	return (n + MemoryAlignment - 1) &^ (MemoryAlignment - 1)
}

// ensureScratch grows the arena so every region holds at least the given
// number of bytes. Regions never shrink. Called only by the invoking
// thread, strictly before the parallel region opens.
func (s *ThreadSlot) ensureScratch(poolReduce, teamReduce, teamShared, local int) {
	poolReduce = alignUp(max(poolReduce, s.poolReduceCap))
	teamReduce = alignUp(max(teamReduce, s.teamReduceCap))
	teamShared = alignUp(max(teamShared, s.teamSharedCap))
	local = alignUp(max(local, s.localCap))

	total := poolReduce + teamReduce + teamShared + local
	if total > len(s.arena) {
		// Scratch contents are transient per dispatch; no copy needed.
		s.arena = make([]byte, total)
	}

	s.poolReduceOff, s.poolReduceCap = 0, poolReduce
	s.teamReduceOff, s.teamReduceCap = poolReduce, teamReduce
	s.teamSharedOff, s.teamSharedCap = poolReduce+teamReduce, teamShared
	s.localOff, s.localCap = poolReduce+teamReduce+teamShared, local
}

// teamSharedWindow returns the slot's team-shared region limited to n
// bytes. The region offset is cache-line aligned.
func (s *ThreadSlot) teamSharedWindow(n int) []byte {
	if n > s.teamSharedCap {
		panic(NewResourceError("teamSharedWindow",
			"team shared window exceeds scratch capacity", nil))
	}
	return s.arena[s.teamSharedOff : s.teamSharedOff+n : s.teamSharedOff+n]
}

// reduceValue returns a typed view of the index-th value slot in the
// pool-reduce region. Index 0 holds the thread-local accumulator; scan
// dispatches use index 1 for the exclusive base. The offset and length are
// validated against the region's current capacity. T must be a plain value
// type without interior pointers: the arena is untyped memory and the
// garbage collector will not trace references stored in it.
func reduceValue[T any](s *ThreadSlot, index int) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	off := index * size
	if off+size > s.poolReduceCap {
		panic(NewResourceError("reduceValue",
			"accumulator exceeds pool-reduce scratch capacity", nil))
	}
	if size == 0 {
		return &zero
	}
	return (*T)(unsafe.Pointer(&s.arena[s.poolReduceOff+off]))
}

// organizeTeam groups the pool's slots into teams of teamSize consecutive
// members and returns whether this slot is an active member. The pool size
// may not divide evenly, in which case the trailing slots are inactive for
// the dispatch; they must still call disbandTeam. The pool rendezvous at
// the end guarantees every team barrier is initialized before any member
// can reach it.
func (s *ThreadSlot) organizeTeam(rt *Runtime, teamSize int) bool {
	teamCount := rt.nthreads / teamSize

	s.teamSize = teamSize
	s.teamIndex = s.rank / teamSize
	s.teamRank = s.rank % teamSize
	s.active = s.teamIndex < teamCount

	if s.active {
		s.teamBase = rt.slots[s.teamIndex*teamSize]
		if s.teamRank == 0 {
			s.teamBarrier.reset(teamSize)
			s.stealLo, s.stealHi = 0, 0
		}
	} else {
		s.teamBase = nil
	}

	rt.poolBarrier.sync()
	return s.active
}

// disbandTeam releases the slot's team state for reuse by a later
// dispatch. Inactive slots trivially succeed. The pool rendezvous keeps a
// finished member from tearing down while peers of any team are still
// between league ranks.
func (s *ThreadSlot) disbandTeam(rt *Runtime) {
	rt.poolBarrier.sync()
	s.teamBase = nil
	s.active = false
	s.teamSize = 0
	s.teamIndex = 0
	s.teamRank = 0
}

// teamStealChunk claims the team's next league chunk from the shared
// cursor. The last member to arrive performs the claim and publishes the
// window through the team barrier, so every member observes the identical
// chunk. Members therefore execute the same league ranks and exit the
// stealing loop together on the sentinel.
func (s *ThreadSlot) teamStealChunk(rt *Runtime) (int, int) {
	base := s.teamBase
	if s.teamSize == 1 {
		return rt.stealChunk()
	}
	if base.teamBarrier.arrive() {
		base.stealLo, base.stealHi = rt.stealChunk()
		base.teamBarrier.release()
	}
	return base.stealLo, base.stealHi
}

// staticPartition computes the rank-th of nparts equal-ish slices of
// [0, total): slice lengths differ by at most one and the remainder goes
// to the first slices. The union of all slices covers [0, total) exactly.
func staticPartition(rank, nparts, total int) (int, int) {
	if nparts <= 0 || rank < 0 || rank >= nparts {
		return 0, 0
	}
	size := total / nparts
	rem := total % nparts
	lo := rank*size + min(rank, rem)
	hi := lo + size
	if rank < rem {
		hi++
	}
	return lo, hi
}
