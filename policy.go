package parcore

import (
	"fmt"
)

// Schedule selects how an iteration space is divided among pool threads.
type Schedule int

const (
	// Static precomputes one equal-ish slice per participant.
	Static Schedule = iota
	// Dynamic lets idle participants claim chunks from a shared atomic
	// cursor (work stealing).
	Dynamic
)

// String returns the schedule name
func (s Schedule) String() string {
	switch s {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// RangePolicy describes a flat half-open iteration space [Begin, End).
type RangePolicy struct {
	Begin, End int
	Sched      Schedule
	Chunk      int // work-stealing chunk size; <= 0 selects a default
}

// NewRange builds a flat range policy over [begin, end).
// Returns a configuration error if end < begin.
func NewRange(begin, end int) (RangePolicy, error) {
	if end < begin {
		return RangePolicy{}, ErrInvalidRange
	}
	return RangePolicy{Begin: begin, End: end}, nil
}

// WithSchedule returns a copy of the policy with the given schedule.
func (p RangePolicy) WithSchedule(s Schedule) RangePolicy {
	p.Sched = s
	return p
}

// WithChunk returns a copy of the policy with the given stealing chunk
// size. A value <= 0 keeps the implementation-chosen default.
func (p RangePolicy) WithChunk(n int) RangePolicy {
	p.Chunk = n
	return p
}

func (p RangePolicy) extent() int {
	return p.End - p.Begin
}

// MDRangePolicy describes a multi-dimensional iteration space tiled into
// blocks. The flat dispatch index addresses tiles; each tile expands to
// its full multi-dimensional sub-iteration in row-major order with the
// last dimension fastest.
type MDRangePolicy struct {
	Dims  []int // extent per dimension
	Tiles []int // tile extent per dimension
	Sched Schedule
	Chunk int

	tileCounts []int // tiles per dimension
	numTiles   int
}

// NewMDRange builds a tiled multi-dimensional range policy. tiles may be
// nil to select default tile extents; individual entries <= 0 are also
// defaulted. The product of the tile extents is capped at MaxTileProduct.
func NewMDRange(dims []int, tiles []int) (MDRangePolicy, error) {
	rank := len(dims)
	if rank == 0 {
		return MDRangePolicy{}, NewConfigError("NewMDRange", "rank must be at least 1")
	}
	for d, n := range dims {
		if n < 0 {
			return MDRangePolicy{}, NewConfigError("NewMDRange",
				fmt.Sprintf("dimension %d has negative extent %d", d, n))
		}
	}
	if tiles != nil && len(tiles) != rank {
		return MDRangePolicy{}, NewConfigError("NewMDRange",
			fmt.Sprintf("got %d tile extents for rank %d", len(tiles), rank))
	}

	t := make([]int, rank)
	for d := 0; d < rank; d++ {
		if tiles != nil {
			t[d] = tiles[d]
		}
		if t[d] <= 0 {
			// Default: unit tiles except the fastest dimension, which
			// takes as much contiguous work as the cap allows.
			if d == rank-1 {
				t[d] = min(max(dims[d], 1), MaxTileProduct)
			} else {
				t[d] = 1
			}
		}
	}

	product := 1
	for _, n := range t {
		product *= n
		if product > MaxTileProduct {
			return MDRangePolicy{}, NewConfigError("NewMDRange",
				fmt.Sprintf("tile size product exceeds %d", MaxTileProduct))
		}
	}

	counts := make([]int, rank)
	numTiles := 1
	for d := 0; d < rank; d++ {
		counts[d] = (dims[d] + t[d] - 1) / t[d]
		numTiles *= counts[d]
	}

	return MDRangePolicy{
		Dims:       append([]int(nil), dims...),
		Tiles:      t,
		tileCounts: counts,
		numTiles:   numTiles,
	}, nil
}

// WithSchedule returns a copy of the policy with the given schedule.
func (p MDRangePolicy) WithSchedule(s Schedule) MDRangePolicy {
	p.Sched = s
	return p
}

// WithChunk returns a copy of the policy with the given stealing chunk
// size, counted in tiles.
func (p MDRangePolicy) WithChunk(n int) MDRangePolicy {
	p.Chunk = n
	return p
}

// Rank returns the number of dimensions.
func (p MDRangePolicy) Rank() int {
	return len(p.Dims)
}

// NumTiles returns the extent of the flat tile-index space.
func (p MDRangePolicy) NumTiles() int {
	return p.numTiles
}

// tileBounds expands flat tile index t into per-dimension bounds, writing
// them into lo and hi. Tiles are ordered row-major: consecutive flat
// indices advance the last dimension's tile first.
func (p MDRangePolicy) tileBounds(t int, lo, hi []int) {
	for d := len(p.Dims) - 1; d >= 0; d-- {
		c := t % p.tileCounts[d]
		t /= p.tileCounts[d]
		lo[d] = c * p.Tiles[d]
		hi[d] = min(lo[d]+p.Tiles[d], p.Dims[d])
	}
}

// iterateTile walks one tile's index space in row-major order, invoking f
// with the coordinate buffer idx. The buffer is reused between calls; the
// functor must not retain it.
func iterateTile(lo, hi, idx []int, f func(idx []int)) {
	for d := range lo {
		if lo[d] >= hi[d] {
			return
		}
		idx[d] = lo[d]
	}
	rank := len(lo)
	for {
		f(idx)
		d := rank - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < hi[d] {
				break
			}
			idx[d] = lo[d]
		}
		if d < 0 {
			return
		}
	}
}

// TeamPolicy describes a hierarchical iteration space of LeagueSize league
// entries, each handled by one team of TeamSize cooperating pool threads.
type TeamPolicy struct {
	LeagueSize int
	TeamSize   int
	Sched      Schedule
	Chunk      int // league ranks claimed per steal; <= 0 selects a default
	SharedSize int // bytes of team-shared scratch per team
}

// NewTeamPolicy builds a team policy. Returns a configuration error if
// either size is negative or the team size is zero with a non-zero league.
func NewTeamPolicy(leagueSize, teamSize int) (TeamPolicy, error) {
	if leagueSize < 0 || teamSize < 0 {
		return TeamPolicy{}, ErrInvalidTeamSize
	}
	if teamSize == 0 && leagueSize > 0 {
		return TeamPolicy{}, NewConfigError("NewTeamPolicy",
			"team size must be positive for a non-empty league")
	}
	return TeamPolicy{LeagueSize: leagueSize, TeamSize: teamSize}, nil
}

// WithSchedule returns a copy of the policy with the given schedule.
func (p TeamPolicy) WithSchedule(s Schedule) TeamPolicy {
	p.Sched = s
	return p
}

// WithChunk returns a copy of the policy with the given stealing chunk
// size, counted in league ranks.
func (p TeamPolicy) WithChunk(n int) TeamPolicy {
	p.Chunk = n
	return p
}

// WithShared returns a copy of the policy requesting n bytes of
// team-shared scratch per team.
func (p TeamPolicy) WithShared(n int) TeamPolicy {
	p.SharedSize = n
	return p
}
