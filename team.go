package parcore

import (
	"unsafe"
)

// TeamMember is the per-thread handle inside one league entry of a team
// dispatch. It exposes the member's coordinates, a team-scoped barrier,
// and the team-shared scratch window. A TeamMember is only valid for the
// duration of the functor invocation it is passed to.
type TeamMember struct {
	rt   *Runtime
	slot *ThreadSlot

	leagueRank int
	leagueSize int
	teamRank   int
	teamSize   int

	shared []byte

	// Parity for double-buffered team collectives; advanced identically
	// on every member in TeamReduce.
	collective int

	// Sequential-degraded dispatch: the calling goroutine handles every
	// league rank as a team of one, so the barrier is a no-op.
	sequential bool
}

// LeagueRank returns the index of the league entry this team is handling.
func (m *TeamMember) LeagueRank() int { return m.leagueRank }

// LeagueSize returns the number of league entries in the dispatch.
func (m *TeamMember) LeagueSize() int { return m.leagueSize }

// TeamRank returns this member's rank within its team.
func (m *TeamMember) TeamRank() int { return m.teamRank }

// TeamSize returns the number of members cooperating on one league entry.
func (m *TeamMember) TeamSize() int { return m.teamSize }

// Shared returns the team-shared scratch window. Every member of the team
// sees the same bytes; writes become visible to peers after TeamBarrier.
// The window's contents persist between consecutive league ranks handled
// by the same team.
func (m *TeamMember) Shared() []byte { return m.shared }

// TeamBarrier blocks until every member of the team has reached it.
func (m *TeamMember) TeamBarrier() {
	if m.sequential || m.teamSize == 1 {
		return
	}
	m.slot.teamBase.teamBarrier.sync()
}

// teamReduceValue returns a typed view of the index-th value slot in a
// member's team-reduce region, validated against its capacity. Same
// pointer-free restriction as the pool-reduce region.
func teamReduceValue[T any](s *ThreadSlot, index int) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	off := index * size
	if off+size > s.teamReduceCap {
		panic(NewResourceError("teamReduceValue",
			"accumulator exceeds team-reduce scratch capacity", nil))
	}
	if size == 0 {
		return &zero
	}
	return (*T)(unsafe.Pointer(&s.arena[s.teamReduceOff+off]))
}

// TeamReduce combines one value per team member and returns the merged
// result to every member. Members must all call it, the same number of
// times per league rank. Join order is team-rank order. The merged value
// is double-buffered across calls so a fast member starting the next
// collective cannot overwrite a result a slow peer is still reading.
func TeamReduce[T any](m *TeamMember, value T, red Reducer[T]) T {
	if m.sequential || m.teamSize == 1 {
		return value
	}
	m.collective++
	idx := m.collective & 1

	slot := m.slot
	base := slot.teamBase
	*teamReduceValue[T](slot, idx) = value
	m.TeamBarrier()

	if m.teamRank == 0 {
		acc := teamReduceValue[T](base, idx)
		first := base.rank
		for r := 1; r < m.teamSize; r++ {
			red.Join(acc, teamReduceValue[T](m.rt.slot(first+r), idx))
		}
	}
	m.TeamBarrier()

	return *teamReduceValue[T](base, idx)
}
