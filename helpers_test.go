package parcore

import (
	"testing"
)

// Pool sizes exercised by the dispatch tests. Sizes past the host's core
// count are deliberate: the spin rendezvous must still make progress when
// the pool is oversubscribed.
var testPoolSizes = []int{1, 2, 3, 4, 8}

func newTestRuntime(t *testing.T, threads int) *Runtime {
	t.Helper()
	rt, err := NewRuntime(WithThreads(threads))
	if err != nil {
		t.Fatalf("NewRuntime with %d threads: %v", threads, err)
	}
	t.Cleanup(func() { rt.Close() })
	return rt
}

func mustRange(t *testing.T, begin, end int) RangePolicy {
	t.Helper()
	p, err := NewRange(begin, end)
	if err != nil {
		t.Fatalf("NewRange(%d, %d): %v", begin, end, err)
	}
	return p
}

func mustMDRange(t *testing.T, dims, tiles []int) MDRangePolicy {
	t.Helper()
	p, err := NewMDRange(dims, tiles)
	if err != nil {
		t.Fatalf("NewMDRange(%v, %v): %v", dims, tiles, err)
	}
	return p
}

func mustTeamPolicy(t *testing.T, league, team int) TeamPolicy {
	t.Helper()
	p, err := NewTeamPolicy(league, team)
	if err != nil {
		t.Fatalf("NewTeamPolicy(%d, %d): %v", league, team, err)
	}
	return p
}
