package parcore

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestNewRangeValidation(t *testing.T) {
	if _, err := NewRange(5, 3); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("NewRange(5, 3) error = %v, want ErrInvalidRange", err)
	}
	p, err := NewRange(3, 3)
	if err != nil {
		t.Fatalf("NewRange(3, 3): %v", err)
	}
	if p.extent() != 0 {
		t.Errorf("empty range extent = %d, want 0", p.extent())
	}
}

func TestScheduleString(t *testing.T) {
	if Static.String() != "static" || Dynamic.String() != "dynamic" {
		t.Errorf("schedule names = %q/%q", Static, Dynamic)
	}
	if Schedule(42).String() != "unknown" {
		t.Errorf("out-of-range schedule name = %q", Schedule(42))
	}
}

func TestDefaultChunkSize(t *testing.T) {
	cases := []struct {
		total, nthreads, want int
	}{
		{0, 4, MinChunkSize},
		{10, 4, MinChunkSize},
		{3200, 4, 100},
		{1 << 30, 4, MaxChunkSize},
		{100, 0, 12}, // degenerate participant count clamps to one
	}
	for _, c := range cases {
		if got := defaultChunkSize(c.total, c.nthreads); got != c.want {
			t.Errorf("defaultChunkSize(%d, %d) = %d, want %d", c.total, c.nthreads, got, c.want)
		}
	}
}

// Default tiles are unit in the slow dimensions and as long as the cap
// allows in the fastest one.
func TestNewMDRangeDefaultTiles(t *testing.T) {
	cases := []struct {
		dims      []int
		wantTiles []int
		wantCount int
	}{
		{[]int{100, 7}, []int{1, 7}, 100},
		{[]int{5, 5000}, []int{1, MaxTileProduct}, 5 * 5},
		{[]int{9}, []int{9}, 1},
		{[]int{3, 0}, []int{1, 1}, 0},
	}
	for _, c := range cases {
		p := mustMDRange(t, c.dims, nil)
		if !reflect.DeepEqual(p.Tiles, c.wantTiles) {
			t.Errorf("dims %v: tiles = %v, want %v", c.dims, p.Tiles, c.wantTiles)
		}
		if p.NumTiles() != c.wantCount {
			t.Errorf("dims %v: NumTiles = %d, want %d", c.dims, p.NumTiles(), c.wantCount)
		}
	}
}

func TestNewMDRangeValidation(t *testing.T) {
	cases := []struct {
		name  string
		dims  []int
		tiles []int
	}{
		{"zero rank", nil, nil},
		{"negative extent", []int{4, -1}, nil},
		{"tile rank mismatch", []int{4, 4}, []int{2}},
		{"tile product over cap", []int{64, 64}, []int{64, 64}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewMDRange(c.dims, c.tiles)
			if !IsConfigError(err) {
				t.Errorf("NewMDRange(%v, %v) error = %v, want a config error", c.dims, c.tiles, err)
			}
		})
	}
}

// Consecutive flat tile indices advance the last dimension's tile first,
// and edge tiles are clipped to the space.
func TestTileBoundsRowMajor(t *testing.T) {
	p := mustMDRange(t, []int{4, 7}, []int{2, 3})
	if p.NumTiles() != 2*3 {
		t.Fatalf("NumTiles = %d, want 6", p.NumTiles())
	}
	want := []struct{ lo, hi [2]int }{
		{[2]int{0, 0}, [2]int{2, 3}},
		{[2]int{0, 3}, [2]int{2, 6}},
		{[2]int{0, 6}, [2]int{2, 7}}, // clipped
		{[2]int{2, 0}, [2]int{4, 3}},
		{[2]int{2, 3}, [2]int{4, 6}},
		{[2]int{2, 6}, [2]int{4, 7}},
	}
	lo, hi := make([]int, 2), make([]int, 2)
	for tile, w := range want {
		p.tileBounds(tile, lo, hi)
		if lo[0] != w.lo[0] || lo[1] != w.lo[1] || hi[0] != w.hi[0] || hi[1] != w.hi[1] {
			t.Errorf("tile %d bounds = [%v, %v), want [%v, %v)", tile, lo, hi, w.lo, w.hi)
		}
	}
}

func TestIterateTileOrder(t *testing.T) {
	var got []string
	iterateTile([]int{1, 10}, []int{3, 12}, make([]int, 2), func(idx []int) {
		got = append(got, fmt.Sprintf("%d,%d", idx[0], idx[1]))
	})
	want := []string{"1,10", "1,11", "2,10", "2,11"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("iteration order %v, want %v", got, want)
	}
}

func TestIterateTileEmpty(t *testing.T) {
	calls := 0
	iterateTile([]int{0, 5}, []int{3, 5}, make([]int, 2), func([]int) { calls++ })
	if calls != 0 {
		t.Errorf("empty tile invoked the functor %d times", calls)
	}
}

func TestNewTeamPolicyValidation(t *testing.T) {
	if _, err := NewTeamPolicy(-1, 2); !errors.Is(err, ErrInvalidTeamSize) {
		t.Errorf("negative league error = %v, want ErrInvalidTeamSize", err)
	}
	if _, err := NewTeamPolicy(4, -2); !errors.Is(err, ErrInvalidTeamSize) {
		t.Errorf("negative team error = %v, want ErrInvalidTeamSize", err)
	}
	if _, err := NewTeamPolicy(4, 0); !IsConfigError(err) {
		t.Errorf("zero team with non-empty league error = %v, want a config error", err)
	}
	if _, err := NewTeamPolicy(0, 0); err != nil {
		t.Errorf("empty league rejected: %v", err)
	}

	p := mustTeamPolicy(t, 8, 2).WithSchedule(Dynamic).WithChunk(3).WithShared(256)
	if p.Sched != Dynamic || p.Chunk != 3 || p.SharedSize != 256 {
		t.Errorf("builder results %v/%d/%d, want dynamic/3/256", p.Sched, p.Chunk, p.SharedSize)
	}
}
