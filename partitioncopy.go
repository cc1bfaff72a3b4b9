package parcore

// partitionCounts tracks how many elements have satisfied and failed the
// predicate so far; it doubles as the scan accumulator, so the running
// counts are exactly the output positions of the next element.
type partitionCounts struct {
	True, False int
}

type partitionReducer struct{}

func (partitionReducer) Init(v *partitionCounts) { *v = partitionCounts{} }
func (partitionReducer) Join(dst, src *partitionCounts) {
	dst.True += src.True
	dst.False += src.False
}
func (partitionReducer) Final(*partitionCounts) {}

// PartitionCopy splits src by pred: elements satisfying it are copied to
// dstTrue, the rest to dstFalse, each stream preserving the original
// relative order. Returns the number of elements written to each stream.
// Both destinations must be at least as long as the number of elements
// routed to them (len(src) is always sufficient).
//
// Built on the exclusive scan: the accumulator's running counts give every
// element its stable output position, so the copy parallelizes without
// any ordering coordination beyond the scan itself.
func PartitionCopy[T any](rt *Runtime, src, dstTrue, dstFalse []T, pred func(T) bool) (int, int) {
	p, err := NewRange(0, len(src))
	if err != nil {
		panic(err)
	}
	total := ScanTotal(rt, p, func(i int, acc *partitionCounts, final bool) {
		v := src[i]
		ok := pred(v)
		if final {
			if ok {
				dstTrue[acc.True] = v
			} else {
				dstFalse[acc.False] = v
			}
		}
		if ok {
			acc.True++
		} else {
			acc.False++
		}
	}, partitionReducer{})
	return total.True, total.False
}
