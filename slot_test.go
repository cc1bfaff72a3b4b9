package parcore

import (
	"fmt"
	"testing"
)

// Test that the static partition covers the range exactly, in rank order,
// with slice lengths differing by at most one and the remainder on the
// first slices.
func TestStaticPartitionProperties(t *testing.T) {
	totals := []int{0, 1, 2, 5, 7, 16, 100, 101, 1000}
	parts := []int{1, 2, 3, 4, 7, 8, 16}

	for _, total := range totals {
		for _, nparts := range parts {
			t.Run(fmt.Sprintf("total=%d/nparts=%d", total, nparts), func(t *testing.T) {
				prevHi := 0
				minLen, maxLen := total+1, -1
				prevLen := -1
				for rank := 0; rank < nparts; rank++ {
					lo, hi := staticPartition(rank, nparts, total)
					if lo != prevHi {
						t.Fatalf("rank %d starts at %d, previous ended at %d", rank, lo, prevHi)
					}
					if hi < lo {
						t.Fatalf("rank %d has negative slice [%d, %d)", rank, lo, hi)
					}
					n := hi - lo
					if n < minLen {
						minLen = n
					}
					if n > maxLen {
						maxLen = n
					}
					if prevLen >= 0 && n > prevLen {
						t.Errorf("rank %d slice grew from %d to %d; remainder must lead", rank, prevLen, n)
					}
					prevLen = n
					prevHi = hi
				}
				if prevHi != total {
					t.Errorf("partition ends at %d, want %d", prevHi, total)
				}
				if maxLen-minLen > 1 {
					t.Errorf("slice lengths range from %d to %d, want spread <= 1", minLen, maxLen)
				}
			})
		}
	}
}

// Out-of-range ranks take no work rather than corrupting neighbors.
func TestStaticPartitionInvalidRank(t *testing.T) {
	cases := []struct{ rank, nparts int }{
		{-1, 4}, {4, 4}, {100, 4}, {0, 0}, {0, -1},
	}
	for _, c := range cases {
		lo, hi := staticPartition(c.rank, c.nparts, 100)
		if lo != 0 || hi != 0 {
			t.Errorf("staticPartition(%d, %d, 100) = [%d, %d), want empty", c.rank, c.nparts, lo, hi)
		}
	}
}

func TestAlignUp(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0},
		{1, MemoryAlignment},
		{MemoryAlignment - 1, MemoryAlignment},
		{MemoryAlignment, MemoryAlignment},
		{MemoryAlignment + 1, 2 * MemoryAlignment},
		{1000, 1024},
	}
	for _, c := range cases {
		if got := alignUp(c.in); got != c.want {
			t.Errorf("alignUp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

// Test that scratch regions grow on demand, stay aligned, never overlap,
// and never shrink.
func TestEnsureScratchRegions(t *testing.T) {
	s := &ThreadSlot{rank: 0}

	s.ensureScratch(100, 0, 0, 0)
	if s.poolReduceCap < 100 {
		t.Fatalf("pool-reduce capacity %d after request for 100", s.poolReduceCap)
	}
	firstCap := s.poolReduceCap

	s.ensureScratch(10, 256, 300, 32)
	if s.poolReduceCap < firstCap {
		t.Errorf("pool-reduce capacity shrank from %d to %d", firstCap, s.poolReduceCap)
	}
	if s.teamReduceCap < 256 || s.teamSharedCap < 300 || s.localCap < 32 {
		t.Errorf("region capacities %d/%d/%d below requested 256/300/32",
			s.teamReduceCap, s.teamSharedCap, s.localCap)
	}

	offs := []int{s.poolReduceOff, s.teamReduceOff, s.teamSharedOff, s.localOff}
	caps := []int{s.poolReduceCap, s.teamReduceCap, s.teamSharedCap, s.localCap}
	for i, off := range offs {
		if off%MemoryAlignment != 0 {
			t.Errorf("region %d offset %d not %d-byte aligned", i, off, MemoryAlignment)
		}
		if i > 0 && off != offs[i-1]+caps[i-1] {
			t.Errorf("region %d at %d overlaps or skips previous end %d", i, off, offs[i-1]+caps[i-1])
		}
	}
	if end := s.localOff + s.localCap; end > len(s.arena) {
		t.Errorf("regions end at %d past arena length %d", end, len(s.arena))
	}
}

// Accumulator views on different slots must alias distinct memory.
func TestReduceValueDistinctSlots(t *testing.T) {
	rt := newTestRuntime(t, 4)
	rt.ensureScratch(8, 0, 0, 0)

	for rank := 0; rank < 4; rank++ {
		*reduceValue[int64](rt.slot(rank), 0) = int64(rank + 1)
	}
	for rank := 0; rank < 4; rank++ {
		if got := *reduceValue[int64](rt.slot(rank), 0); got != int64(rank+1) {
			t.Errorf("slot %d accumulator = %d, want %d", rank, got, rank+1)
		}
	}
}

// A view past the region's capacity must refuse rather than alias the
// neighboring region.
func TestReduceValueCapacityCheck(t *testing.T) {
	s := &ThreadSlot{rank: 0}
	s.ensureScratch(8, 0, 0, 0)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for an out-of-capacity accumulator view")
		}
		err, ok := r.(error)
		if !ok || !IsResourceError(err) {
			t.Fatalf("recovered %v, want a resource error", r)
		}
	}()
	_ = reduceValue[int64](s, MemoryAlignment/8)
}

func TestTeamSharedWindowBounds(t *testing.T) {
	s := &ThreadSlot{rank: 0}
	s.ensureScratch(0, 0, 128, 0)

	w := s.teamSharedWindow(100)
	if len(w) != 100 {
		t.Errorf("window length %d, want 100", len(w))
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an oversized shared window")
		}
	}()
	_ = s.teamSharedWindow(s.teamSharedCap + 1)
}
